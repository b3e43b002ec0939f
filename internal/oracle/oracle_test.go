package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cabell132/FitnessTracker/internal/domain"
	"github.com/cabell132/FitnessTracker/internal/transcribe"
)

func completionWith(content string) string {
	encoded, _ := json.Marshal(content)
	return fmt.Sprintf(`{"choices": [{"message": {"role": "assistant", "content": %s}}]}`, encoded)
}

func TestParseSetsDecodesModelReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "json_object", body.ResponseFormat.Type)
		require.Contains(t, body.Messages[1].Content, "3x5 @ 100kg")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionWith(`{"sets": [
			{"type": "warmup", "weight_kg": 60, "reps": 5},
			{"type": "normal", "weight_kg": 100, "reps": 5}
		]}`)))
	}))
	defer server.Close()

	client := NewClient("key-1", WithBaseURL(server.URL))
	sets, err := client.ParseSets(context.Background(), transcribe.Request{
		ExerciseType: domain.ExerciseWeightReps,
		Info:         "3x5 @ 100kg",
	})
	require.NoError(t, err)
	require.Equal(t, []domain.Set{
		{Index: 0, Type: domain.SetTypeWarmup, WeightKg: domain.Float(60), Reps: domain.Int(5)},
		{Index: 1, Type: domain.SetTypeNormal, WeightKg: domain.Float(100), Reps: domain.Int(5)},
	}, sets)
}

func TestMalformedReplyMeansCouldNotParse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionWith("sorry, I cannot help with that")))
	}))
	defer server.Close()

	client := NewClient("key-1", WithBaseURL(server.URL))
	sets, err := client.ParseSets(context.Background(), transcribe.Request{Info: "???"})
	require.NoError(t, err)
	require.Empty(t, sets)
}

func TestAPIErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("key-1", WithBaseURL(server.URL))
	_, err := client.ParseSets(context.Background(), transcribe.Request{Info: "3x5"})

	var apiErr *domain.UpstreamAPIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}
