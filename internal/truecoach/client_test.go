package truecoach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

func TestWorkoutsSideloadsItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clients/42/workouts", r.URL.Path)
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		require.Equal(t, "Client", r.Header.Get("Role"))
		require.Equal(t, "desc", r.URL.Query().Get("order"))
		require.Equal(t, "pending,completed", r.URL.Query().Get("states"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"workouts": [
				{"id": 7, "due": "2025-02-05", "short_description": "Lower", "title": "Day 1 100", "state": "pending", "rest_day": false, "client_id": 42, "workout_item_ids": [70, 71]}
			],
			"workout_items": [
				{"id": 70, "workout_id": 7, "name": "Back Squat", "info": "3x5", "result": "", "is_circuit": false, "state": "pending", "position": 1, "exercise_id": 900, "assessment_id": null},
				{"id": 71, "workout_id": 7, "name": "RDL", "info": "3x8", "result": "", "is_circuit": false, "state": "pending", "position": 2, "exercise_id": null, "assessment_id": null},
				{"id": 99, "workout_id": 8, "name": "Other", "info": "", "result": "", "is_circuit": false, "state": "pending", "position": 1, "exercise_id": null, "assessment_id": null}
			],
			"meta": {"page": 1, "total_pages": 1, "per_page": 10, "total_count": 1}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-1", 42)
	page, err := client.Workouts(context.Background(), "desc", 1, 10, []string{StatePending, StateCompleted})
	require.NoError(t, err)
	require.Len(t, page.Workouts, 1)

	workout := page.Workouts[0].ToDomain(page.WorkoutItems)
	require.Equal(t, "Day 1 100", workout.Title)
	require.Equal(t, time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), workout.Due)
	require.Len(t, workout.Items, 2)
	require.Equal(t, "Back Squat", workout.Items[0].Name)
	require.Equal(t, domain.Int64(900), workout.Items[0].ExerciseID)
}

func TestUpdateWorkoutItemWrapsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/workout_items/70", r.URL.Path)

		var body map[string]UpdateItemRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "10 x 50 kg\n", body["workout_item"].Result)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"workout_item": {"id": 70, "workout_id": 7, "result": "10 x 50 kg\n"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-1", 42)
	item, err := client.UpdateWorkoutItem(context.Background(), UpdateItemRequest{ID: 70, WorkoutID: 7, Result: "10 x 50 kg\n"})
	require.NoError(t, err)
	require.Equal(t, "10 x 50 kg\n", item.Result)
}

func TestMarkCompletedFiresStateEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/workouts/7", r.URL.Path)

		var body map[string]map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, EventMarkCompleted, body["workout"]["state_event"])

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-1", 42)
	require.NoError(t, client.MarkCompleted(context.Background(), 7))
}

func TestErrorResponsesBecomeUpstreamErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-token", 42)
	_, err := client.Exercises(context.Background())

	var apiErr *domain.UpstreamAPIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
