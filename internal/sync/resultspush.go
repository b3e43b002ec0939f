package sync

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cabell132/FitnessTracker/internal/observability"
	"github.com/cabell132/FitnessTracker/internal/persistence/postgres"
	"github.com/cabell132/FitnessTracker/internal/transcribe"
	"github.com/cabell132/FitnessTracker/internal/truecoach"
)

// ResultsStore reads linked workouts and records pushed results.
type ResultsStore interface {
	LinkedPendingWorkouts(ctx context.Context) ([]postgres.LinkedWorkout, error)
	LinkedItems(ctx context.Context, workoutID int64) ([]postgres.LinkedItem, error)
	SaveCoachItemResult(ctx context.Context, itemID int64, result, state string) error
	SetCoachWorkoutState(ctx context.Context, workoutID int64, state string) error
}

// CoachWriter pushes results to the coaching platform.
type CoachWriter interface {
	UpdateWorkoutItem(ctx context.Context, req truecoach.UpdateItemRequest) (*truecoach.WorkoutItem, error)
	MarkCompleted(ctx context.Context, workoutID int64) error
}

// ResultsPusher transcribes logged sets into result text on the
// coaching platform and completes the workout there.
type ResultsPusher struct {
	store  ResultsStore
	target CoachWriter
	logger *log.Logger
}

// ResultsOption configures a ResultsPusher.
type ResultsOption func(*ResultsPusher)

// WithResultsLogger sets a custom logger.
func WithResultsLogger(l *log.Logger) ResultsOption {
	return func(p *ResultsPusher) { p.logger = l }
}

// NewResultsPusher constructs a ResultsPusher.
func NewResultsPusher(store ResultsStore, target CoachWriter, opts ...ResultsOption) *ResultsPusher {
	p := &ResultsPusher{store: store, target: target, logger: log.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run pushes results for every linked pending workout. A failing
// workout is logged and skipped, never blocking the rest.
func (p *ResultsPusher) Run(ctx context.Context) error {
	workouts, err := p.store.LinkedPendingWorkouts(ctx)
	if err != nil {
		return fmt.Errorf("list linked pending workouts: %w", err)
	}

	for _, workout := range workouts {
		if err := p.pushWorkout(ctx, workout); err != nil {
			p.logger.Printf("results: skipping workout %d: %v", workout.CoachID, err)
			observability.RecordWorkoutFailure("results_push")
			continue
		}
		observability.RecordWorkoutSynced("results_push")
	}
	return nil
}

func (p *ResultsPusher) pushWorkout(ctx context.Context, workout postgres.LinkedWorkout) error {
	items, err := p.store.LinkedItems(ctx, workout.WorkoutID)
	if err != nil {
		return err
	}

	for _, item := range items {
		result, err := transcribe.Transcribe(item.ExerciseType, item.Sets)
		if err != nil {
			return fmt.Errorf("item %d: %w", item.Coach.ID, err)
		}

		req := truecoach.NewUpdateItemRequest(item.Coach)
		req.Result = strings.TrimSpace(result)
		req.State = truecoach.StateCompleted
		event := truecoach.EventMarkCompleted
		req.StateEvent = &event

		res, err := p.target.UpdateWorkoutItem(ctx, req)
		if err != nil {
			return fmt.Errorf("push item %d: %w", item.Coach.ID, err)
		}
		if err := p.store.SaveCoachItemResult(ctx, res.ID, res.Result, res.State); err != nil {
			return err
		}
	}

	if err := p.target.MarkCompleted(ctx, workout.CoachID); err != nil {
		return fmt.Errorf("mark workout %d completed: %w", workout.CoachID, err)
	}
	return p.store.SetCoachWorkoutState(ctx, workout.CoachID, truecoach.StateCompleted)
}
