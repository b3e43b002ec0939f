//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/cabell132/FitnessTracker/internal/domain"
	"github.com/cabell132/FitnessTracker/internal/linker"
)

func newTestStore(t *testing.T, ctx context.Context) *Store {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("fitsync"),
		postgrescontainer.WithUsername("fitsync"),
		postgrescontainer.WithPassword("fitsync"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, Migrate(ctx, pool))
	return NewStore(pool)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

func TestCoachThenHevyLinksOneCanonicalWorkout(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, ctx)

	coach := domain.CoachWorkout{
		ID:               5001,
		Title:            "Day 1 5001",
		Due:              time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		ShortDescription: "<p class=\"name-and-info\">1) Back Squat<br/>2) Romanian Deadlift</p>",
		State:            "pending",
		Items: []domain.CoachWorkoutItem{
			{ID: 61, WorkoutID: 5001, Name: "Back Squat", Info: "3x5", State: "pending", Position: 1},
			{ID: 62, WorkoutID: 5001, Name: "Romanian Deadlift", Info: "3x8", State: "pending", Position: 2},
		},
	}
	coachCanonical, err := store.ApplyCoachWorkout(ctx, coach)
	require.NoError(t, err)

	start := time.Date(2025, 3, 3, 17, 0, 0, 0, time.UTC)
	hevy := domain.HevyWorkout{
		ID:        "hw-1",
		Title:     "Day 1\n5001",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		UpdatedAt: start.Add(time.Hour),
		Items: []domain.HevyWorkoutItem{
			{Index: 0, Name: "Squat (Barbell)", ExerciseID: "tpl-squat", Sets: []domain.HevySet{
				{Index: 0, Type: domain.SetTypeNormal, WeightKg: domain.Float(100), Reps: domain.Int(5)},
			}},
			{Index: 1, Name: "Romanian Deadlift", ExerciseID: "tpl-rdl", Sets: []domain.HevySet{
				{Index: 0, Type: domain.SetTypeNormal, WeightKg: domain.Float(80), Reps: domain.Int(8)},
			}},
		},
	}
	match := linker.New().Link
	hevyCanonical, err := store.ApplyHevyWorkout(ctx, hevy, domain.Int64(5001), match)
	require.NoError(t, err)
	require.Equal(t, coachCanonical, hevyCanonical, "anchor must reuse the coach-side canonical row")

	items, err := store.LinkedItems(ctx, hevyCanonical)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Back Squat", items[0].Coach.Name)
	require.Len(t, items[0].Sets, 1)
	require.Equal(t, domain.Float(100), items[0].Sets[0].WeightKg)

	// Re-applying is idempotent and keeps the links.
	again, err := store.ApplyHevyWorkout(ctx, hevy, domain.Int64(5001), match)
	require.NoError(t, err)
	require.Equal(t, hevyCanonical, again)

	pending, err := store.LinkedPendingWorkouts(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "hw-1", pending[0].HevyID)

	require.NoError(t, store.RecomputeCalories(ctx))
	var calories float64
	err = store.Pool().QueryRow(ctx,
		`SELECT mi.value FROM metric_items mi JOIN metrics m ON m.id = mi.metric_id WHERE m.name = $1`,
		CaloriesMetricName,
	).Scan(&calories)
	require.NoError(t, err)
	require.InDelta(t, 60*caloriesPerMinute, calories, 0.01)
}

func TestApplyHevyWorkoutWithUnknownAnchorStaysUnlinked(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, ctx)

	start := time.Date(2025, 3, 3, 17, 0, 0, 0, time.UTC)
	hevy := domain.HevyWorkout{
		ID:        "hw-1",
		Title:     "5x5 Day 3",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		UpdatedAt: start.Add(time.Hour),
		Items: []domain.HevyWorkoutItem{
			{Index: 0, Name: "Back Squat", ExerciseID: "tpl-squat", Sets: []domain.HevySet{
				{Index: 0, Type: domain.SetTypeNormal, WeightKg: domain.Float(100), Reps: domain.Int(5)},
			}},
		},
	}
	match := linker.New().Link

	// The title's trailing "3" parses as an anchor but names no coach
	// workout; the canonical row still lands, unlinked on the coach side.
	canonical, err := store.ApplyHevyWorkout(ctx, hevy, domain.Int64(3), match)
	require.NoError(t, err)

	var coachID *int64
	var hevyID string
	err = store.Pool().QueryRow(ctx,
		`SELECT coach_id, hevy_id FROM workouts WHERE id = $1`, canonical,
	).Scan(&coachID, &hevyID)
	require.NoError(t, err)
	require.Nil(t, coachID)
	require.Equal(t, "hw-1", hevyID)

	// Once the coach workout arrives, re-applying folds the log-only
	// row into the coach-side canonical row and links both sides.
	coach := domain.CoachWorkout{
		ID:    3,
		Title: "Day 3",
		Due:   start.Truncate(24 * time.Hour),
		State: "pending",
		Items: []domain.CoachWorkoutItem{
			{ID: 31, WorkoutID: 3, Name: "Back Squat", Info: "5x5", State: "pending", Position: 1},
		},
	}
	coachCanonical, err := store.ApplyCoachWorkout(ctx, coach)
	require.NoError(t, err)

	relinked, err := store.ApplyHevyWorkout(ctx, hevy, domain.Int64(3), match)
	require.NoError(t, err)
	require.Equal(t, coachCanonical, relinked)

	var count int
	require.NoError(t, store.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&count))
	require.Equal(t, 1, count, "the log-only row folds into the coach-side row")

	items, err := store.LinkedItems(ctx, relinked)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Back Squat", items[0].Coach.Name)
	require.Len(t, items[0].Sets, 1)
}

func TestDeleteHevyWorkoutKeepsCoachLinkedCanonical(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, ctx)

	match := linker.New().Link
	solo := domain.HevyWorkout{ID: "hw-solo", Title: "Extra Session", UpdatedAt: time.Now().UTC()}
	_, err := store.ApplyHevyWorkout(ctx, solo, nil, match)
	require.NoError(t, err)

	require.NoError(t, store.DeleteHevyWorkout(ctx, "hw-solo"))

	var count int
	require.NoError(t, store.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&count))
	require.Zero(t, count, "log-only canonical workout goes with its source")
}

func TestHealthRecordsPromoteOnce(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, ctx)

	records := []domain.HealthRecord{
		{TypeName: "Body Weight", Unit: "kg", RecordedAt: time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC), Value: 82.4},
		{TypeName: "Body Weight", Unit: "kg", RecordedAt: time.Date(2025, 3, 2, 7, 0, 0, 0, time.UTC), Value: 82.1},
	}
	require.NoError(t, store.UpsertHealthRecords(ctx, records))

	promoted, err := store.PromoteHealthRecords(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, promoted)

	promoted, err = store.PromoteHealthRecords(ctx)
	require.NoError(t, err)
	require.Zero(t, promoted)

	require.NoError(t, store.MapMetricToAssessment(ctx, "Body Weight", 13513325))

	pendingItems, err := store.UnpushedAssessments(ctx)
	require.NoError(t, err)
	require.Len(t, pendingItems, 2)
	require.EqualValues(t, 13513325, pendingItems[0].AssessmentID)

	pushed := domain.CoachAssessmentItem{
		ID:           777,
		AssessmentID: 13513325,
		RecordedAt:   pendingItems[0].RecordedAt,
		Value:        "82.4",
	}
	require.NoError(t, store.MarkAssessmentPushed(ctx, pendingItems[0].MetricItemID, pushed))

	pendingItems, err = store.UnpushedAssessments(ctx)
	require.NoError(t, err)
	require.Len(t, pendingItems, 1)
}
