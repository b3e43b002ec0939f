// Package hevy is a thin client for the workout-log service API. It
// does request/response marshalling only; sync semantics live in the
// orchestrators.
package hevy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.hevyapp.com/v1"

// Client talks to the workout-log service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a Client with sane defaults.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WorkoutEvents returns one page of update/delete events since the
// given time. The API orders events newest first.
func (c *Client) WorkoutEvents(ctx context.Context, since time.Time, page, perPage int) (*EventPage, error) {
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"pageSize": {strconv.Itoa(perPage)},
		"since":    {since.UTC().Format(time.RFC3339)},
	}
	var out EventPage
	if err := c.do(ctx, http.MethodGet, "/workouts/events", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWorkout posts a logged workout.
func (c *Client) CreateWorkout(ctx context.Context, req WorkoutRequest) (*Workout, error) {
	var out struct {
		Workout []Workout `json:"workout"`
	}
	body := map[string]WorkoutRequest{"workout": req}
	if err := c.do(ctx, http.MethodPost, "/workouts", nil, body, &out); err != nil {
		return nil, err
	}
	if len(out.Workout) == 0 {
		return nil, nil
	}
	return &out.Workout[0], nil
}

// CreateRoutine posts a planned routine.
func (c *Client) CreateRoutine(ctx context.Context, req RoutineRequest) error {
	body := map[string]RoutineRequest{"routine": req}
	return c.do(ctx, http.MethodPost, "/routines", nil, body, nil)
}

// Routines returns one page of existing routines.
func (c *Client) Routines(ctx context.Context, page, perPage int) (*RoutinePage, error) {
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"pageSize": {strconv.Itoa(perPage)},
	}
	var out RoutinePage
	if err := c.do(ctx, http.MethodGet, "/routines", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRoutine removes a routine by id.
func (c *Client) DeleteRoutine(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/routines/"+url.PathEscape(id), nil, nil, nil)
}

// ExerciseTemplate fetches one exercise template by id.
func (c *Client) ExerciseTemplate(ctx context.Context, id string) (*ExerciseTemplate, error) {
	var out ExerciseTemplate
	if err := c.do(ctx, http.MethodGet, "/exercise_templates/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExerciseTemplates returns one page of the template library.
func (c *Client) ExerciseTemplates(ctx context.Context, page, perPage int) (*ExerciseTemplatePage, error) {
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"pageSize": {strconv.Itoa(perPage)},
	}
	var out ExerciseTemplatePage
	if err := c.do(ctx, http.MethodGet, "/exercise_templates", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
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
	req.Header.Set("api-key", c.apiKey)
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

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
