// Package truecoach is a thin client for the coaching platform API. It
// does request/response marshalling only; sync semantics live in the
// orchestrators.
package truecoach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

// DefaultBaseURL is the proxy endpoint the web app itself talks to.
const DefaultBaseURL = "https://app.truecoach.co/proxy/api"

// Client talks to the coaching platform on behalf of one client account.
type Client struct {
	baseURL    string
	token      string
	clientID   int64
	httpClient *http.Client
}

// NewClient constructs a Client with sane defaults.
func NewClient(baseURL, token string, clientID int64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		token:    token,
		clientID: clientID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Workouts returns one page of the account's workouts in the given
// states, with their items sideloaded.
func (c *Client) Workouts(ctx context.Context, order string, page, perPage int, states []string) (*WorkoutPage, error) {
	query := url.Values{
		"order":    {order},
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
		"states":   {strings.Join(states, ",")},
	}
	path := fmt.Sprintf("/clients/%d/workouts", c.clientID)
	var out WorkoutPage
	if err := c.do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateWorkoutItem writes a workout item back, typically to replace
// its result text.
func (c *Client) UpdateWorkoutItem(ctx context.Context, req UpdateItemRequest) (*WorkoutItem, error) {
	var out struct {
		WorkoutItem WorkoutItem `json:"workout_item"`
	}
	body := map[string]UpdateItemRequest{"workout_item": req}
	path := fmt.Sprintf("/workout_items/%d", req.ID)
	if err := c.do(ctx, http.MethodPut, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.WorkoutItem, nil
}

// MarkCompleted fires the completed state event on a workout.
func (c *Client) MarkCompleted(ctx context.Context, workoutID int64) error {
	return c.fireStateEvent(ctx, workoutID, EventMarkCompleted)
}

// MarkMissed fires the missed state event on a workout.
func (c *Client) MarkMissed(ctx context.Context, workoutID int64) error {
	return c.fireStateEvent(ctx, workoutID, EventMarkMissed)
}

func (c *Client) fireStateEvent(ctx context.Context, workoutID int64, event string) error {
	body := map[string]map[string]string{
		"workout": {"state_event": event},
	}
	path := fmt.Sprintf("/workouts/%d", workoutID)
	return c.do(ctx, http.MethodPut, path, nil, body, nil)
}

// Exercises returns the full exercise library.
func (c *Client) Exercises(ctx context.Context) ([]Exercise, error) {
	var out ExercisePage
	if err := c.do(ctx, http.MethodGet, "/exercises", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Exercises, nil
}

// Assessment returns one assessment and its recorded items.
func (c *Client) Assessment(ctx context.Context, id int64) (*AssessmentPage, error) {
	var out AssessmentPage
	path := fmt.Sprintf("/assessments/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostAssessmentItem records a new assessment value.
func (c *Client) PostAssessmentItem(ctx context.Context, req AssessmentItemRequest) (*AssessmentItem, error) {
	var out struct {
		AssessmentItem AssessmentItem `json:"assessment_item"`
	}
	body := map[string]AssessmentItemRequest{"assessment_item": req}
	if err := c.do(ctx, http.MethodPost, "/v2/assessment_items", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.AssessmentItem, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Role", "Client")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamAPIError{Message: err.Error(), URL: endpoint}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &domain.UpstreamAPIError{
			Message:    string(snippet),
			URL:        endpoint,
			StatusCode: resp.StatusCode,
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
