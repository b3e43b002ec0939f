// Package oracle parses free-text exercise prescriptions and results
// into structured sets by asking an OpenAI-compatible chat-completions
// endpoint for JSON output.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cabell132/FitnessTracker/internal/domain"
	"github.com/cabell132/FitnessTracker/internal/transcribe"
)

// DefaultBaseURL is the OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// DefaultModel is the model used when none is configured.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You extract structured workout sets from free text.
The input is a JSON object with exercise_type, info (the coach's prescription)
and optionally result (the athlete's reported outcome). Prefer the result when
present, otherwise use the prescription. Respond with a JSON object:
{"sets": [{"type": "normal|warmup|failure|dropset", "weight_kg": number|null,
"reps": number|null, "distance_meters": number|null, "duration_seconds": number|null,
"rpe": number|null}]}.
Only include measurements the exercise type calls for. If the text describes no
usable sets, respond with {"sets": []}.`

// Client asks the chat-completions endpoint to parse sets. It satisfies
// transcribe.SetParser.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a non-default endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithModel overrides the model.
func WithModel(m string) Option {
	return func(c *Client) { c.model = m }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient constructs a Client with sane defaults.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		model:   DefaultModel,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type parsedSet struct {
	Type            string   `json:"type"`
	WeightKg        *float64 `json:"weight_kg"`
	Reps            *int     `json:"reps"`
	DistanceMeters  *int     `json:"distance_meters"`
	DurationSeconds *int     `json:"duration_seconds"`
	RPE             *float64 `json:"rpe"`
}

type parsedSets struct {
	Sets []parsedSet `json:"sets"`
}

// ParseSets sends one prescription to the model and decodes the JSON
// reply. An empty reply means "could not parse" and is not an error.
func (c *Client) ParseSets(ctx context.Context, req transcribe.Request) ([]domain.Set, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode oracle input: %w", err)
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(payload)},
		},
		Temperature:    0,
		MaxTokens:      512,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	resp, err := c.complete(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	var out parsedSets
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		// A malformed reply is treated like an empty one so the
		// fallback policy kicks in instead of failing the workout.
		return nil, nil
	}

	sets := make([]domain.Set, 0, len(out.Sets))
	for i, s := range out.Sets {
		sets = append(sets, domain.Set{
			Index:           i,
			Type:            normalizeType(s.Type),
			WeightKg:        s.WeightKg,
			Reps:            s.Reps,
			DistanceMeters:  s.DistanceMeters,
			DurationSeconds: s.DurationSeconds,
			RPE:             s.RPE,
		})
	}
	return sets, nil
}

func normalizeType(t string) domain.SetType {
	switch domain.SetType(strings.ToLower(strings.TrimSpace(t))) {
	case domain.SetTypeWarmup:
		return domain.SetTypeWarmup
	case domain.SetTypeFailure:
		return domain.SetTypeFailure
	case domain.SetTypeDropset:
		return domain.SetTypeDropset
	default:
		return domain.SetTypeNormal
	}
}

func (c *Client) complete(ctx context.Context, body chatRequest) (*chatResponse, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamAPIError{Message: err.Error(), URL: endpoint}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.UpstreamAPIError{
			Message:    string(snippet),
			URL:        endpoint,
			StatusCode: resp.StatusCode,
		}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	return &out, nil
}
