package hevy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

func TestWorkoutEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/workouts/events", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("api-key"))
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "5", r.URL.Query().Get("pageSize"))
		require.Equal(t, "2025-02-01T00:00:00Z", r.URL.Query().Get("since"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"page": 2,
			"page_count": 3,
			"events": [
				{"type": "deleted", "id": "w-1", "deleted_at": "2025-02-02T10:00:00Z"},
				{"type": "updated", "workout": {"id": "w-2", "title": "Push Day", "updated_at": "2025-02-03T10:00:00Z"}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	since := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	page, err := client.WorkoutEvents(context.Background(), since, 2, 5)
	require.NoError(t, err)
	require.Equal(t, 3, page.PageCount)
	require.Len(t, page.Events, 2)
	require.Equal(t, EventDeleted, page.Events[0].Type)
	require.Equal(t, time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC), page.Events[0].OccurredAt())
	require.Equal(t, "Push Day", page.Events[1].Workout.Title)
}

func TestErrorResponsesBecomeUpstreamErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	_, err := client.Routines(context.Background(), 1, 10)

	var apiErr *domain.UpstreamAPIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestCreateWorkoutWrapsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/workouts", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"workout": [{"id": "w-9", "title": "Imported"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	created, err := client.CreateWorkout(context.Background(), WorkoutRequest{Title: "Imported"})
	require.NoError(t, err)
	require.Equal(t, "w-9", created.ID)
}
