package sync

import (
	"context"
	"fmt"
	"log"

	"github.com/cabell132/FitnessTracker/internal/domain"
	"github.com/cabell132/FitnessTracker/internal/observability"
	"github.com/cabell132/FitnessTracker/internal/truecoach"
)

// CoachSource pages through programmed workouts on the coaching
// platform.
type CoachSource interface {
	Workouts(ctx context.Context, order string, page, perPage int, states []string) (*truecoach.WorkoutPage, error)
}

// CoachStore absorbs programmed workouts into the canonical store.
type CoachStore interface {
	ApplyCoachWorkout(ctx context.Context, w domain.CoachWorkout) (int64, error)
}

const coachWorkoutsPerPage = 10

// CoachPuller mirrors the coaching platform's workouts.
type CoachPuller struct {
	source CoachSource
	store  CoachStore
	states []string
	logger *log.Logger
}

// CoachOption configures a CoachPuller.
type CoachOption func(*CoachPuller)

// WithCoachLogger sets a custom logger.
func WithCoachLogger(l *log.Logger) CoachOption {
	return func(p *CoachPuller) { p.logger = l }
}

// WithCoachStates overrides the pulled workout states.
func WithCoachStates(states []string) CoachOption {
	return func(p *CoachPuller) { p.states = states }
}

// NewCoachPuller constructs a CoachPuller.
func NewCoachPuller(source CoachSource, store CoachStore, opts ...CoachOption) *CoachPuller {
	p := &CoachPuller{
		source: source,
		store:  store,
		states: []string{truecoach.StatePending, truecoach.StateCompleted, truecoach.StateMissed},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run pulls every page of workouts and upserts them. One failing
// workout is logged and skipped.
func (p *CoachPuller) Run(ctx context.Context) error {
	for page := 1; ; page++ {
		res, err := p.source.Workouts(ctx, "desc", page, coachWorkoutsPerPage, p.states)
		if err != nil {
			return fmt.Errorf("list coach workouts: %w", err)
		}

		for _, workout := range res.Workouts {
			if _, err := p.store.ApplyCoachWorkout(ctx, workout.ToDomain(res.WorkoutItems)); err != nil {
				p.logger.Printf("coach: skipping workout %d: %v", workout.ID, err)
				observability.RecordWorkoutFailure("coach_pull")
				continue
			}
			observability.RecordWorkoutSynced("coach_pull")
		}

		if page >= res.Meta.TotalPages {
			return nil
		}
	}
}
