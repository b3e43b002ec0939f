package sync

import (
	"context"
	"fmt"
	"log"

	"github.com/cabell132/FitnessTracker/internal/domain"
	"github.com/cabell132/FitnessTracker/internal/hevy"
	"github.com/cabell132/FitnessTracker/internal/observability"
	"github.com/cabell132/FitnessTracker/internal/superset"
	"github.com/cabell132/FitnessTracker/internal/transcribe"
)

// RoutineStore reads programmed workouts awaiting a routine and
// resolves exercise templates.
type RoutineStore interface {
	PendingRoutineWorkouts(ctx context.Context) ([]domain.CoachWorkout, error)
	ExerciseTemplateForName(ctx context.Context, name string) (string, error)
	HevyExercise(ctx context.Context, id string) (*domain.HevyExercise, error)
	PlaceholderTemplates(ctx context.Context) ([]string, error)
}

// RoutineWriter creates routines on the log service.
type RoutineWriter interface {
	CreateRoutine(ctx context.Context, req hevy.RoutineRequest) error
}

// SetSource turns a free-text prescription into structured sets.
type SetSource interface {
	Sets(ctx context.Context, req transcribe.Request) ([]domain.Set, error)
}

// RoutinePusher turns programmed workouts into routines on the log
// service, so the athlete sees the plan in the logging app.
type RoutinePusher struct {
	store  RoutineStore
	target RoutineWriter
	sets   SetSource
	logger *log.Logger
}

// RoutineOption configures a RoutinePusher.
type RoutineOption func(*RoutinePusher)

// WithRoutineLogger sets a custom logger.
func WithRoutineLogger(l *log.Logger) RoutineOption {
	return func(p *RoutinePusher) { p.logger = l }
}

// NewRoutinePusher constructs a RoutinePusher.
func NewRoutinePusher(store RoutineStore, target RoutineWriter, sets SetSource, opts ...RoutineOption) *RoutinePusher {
	p := &RoutinePusher{store: store, target: target, sets: sets, logger: log.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run creates one routine per pending programmed workout. The routine
// title carries the coach workout id on its last line; the logged
// workout's title keeps it, and that is the anchor the pull flow links
// back on. One failing workout is logged and skipped.
func (p *RoutinePusher) Run(ctx context.Context) error {
	workouts, err := p.store.PendingRoutineWorkouts(ctx)
	if err != nil {
		return fmt.Errorf("list pending routine workouts: %w", err)
	}
	if len(workouts) == 0 {
		return nil
	}

	placeholders, err := p.store.PlaceholderTemplates(ctx)
	if err != nil {
		return fmt.Errorf("list placeholder templates: %w", err)
	}
	pool := &placeholderPool{ids: placeholders}

	for _, workout := range workouts {
		if err := p.pushWorkout(ctx, workout, pool); err != nil {
			p.logger.Printf("routines: skipping workout %d: %v", workout.ID, err)
			observability.RecordWorkoutFailure("routines")
			continue
		}
		observability.RecordWorkoutSynced("routines")
	}
	return nil
}

func (p *RoutinePusher) pushWorkout(ctx context.Context, workout domain.CoachWorkout, pool *placeholderPool) error {
	entries, err := superset.Parse(workout.ShortDescription)
	if err != nil {
		return err
	}
	anchors := superset.Anchors(entries)
	entryByPosition := make(map[int]superset.Entry, len(entries))
	for _, e := range entries {
		entryByPosition[e.Position] = e
	}

	var exercises []hevy.RequestExercise
	used := make(map[string]bool)
	for _, item := range workout.Items {
		exercise, err := p.buildExercise(ctx, item, entryByPosition[item.Position], anchors, pool, used)
		if err != nil {
			return fmt.Errorf("item %d: %w", item.ID, err)
		}
		exercises = append(exercises, exercise)
		used[exercise.ExerciseTemplateID] = true
	}

	req := hevy.RoutineRequest{
		Title:     fmt.Sprintf("%s\n%s\n%d", workout.Due.Format("02 Jan 2006"), workout.Title, workout.ID),
		Notes:     superset.Notes(workout.ShortDescription),
		Exercises: exercises,
	}
	return p.target.CreateRoutine(ctx, req)
}

// buildExercise resolves the template, the superset slot, and the sets
// for one programmed item. When no real template exists (or it was
// already used in this routine) a placeholder stands in and the notes
// lead with the exercise name so the athlete knows what to do.
func (p *RoutinePusher) buildExercise(ctx context.Context, item domain.CoachWorkoutItem, entry superset.Entry, anchors map[int]int, pool *placeholderPool, used map[string]bool) (hevy.RequestExercise, error) {
	templateID, err := p.store.ExerciseTemplateForName(ctx, item.Name)
	if err != nil {
		return hevy.RequestExercise{}, err
	}

	notes := item.Info
	exerciseType := domain.ExerciseWeightReps
	if templateID != "" && !used[templateID] {
		template, err := p.store.HevyExercise(ctx, templateID)
		if err != nil {
			return hevy.RequestExercise{}, err
		}
		if template != nil && template.Type != "" {
			exerciseType = template.Type
		}
	} else {
		templateID, err = pool.take()
		if err != nil {
			return hevy.RequestExercise{}, err
		}
		notes = fmt.Sprintf("%s\n\n%s", item.Name, item.Info)
	}
	if notes == "" {
		notes = item.Name
	}

	var supersetID *int
	if entry.IsSuperset {
		anchor := anchors[entry.Order]
		supersetID = &anchor
	}

	sets, err := p.sets.Sets(ctx, transcribe.Request{
		ExerciseType: exerciseType,
		Info:         item.Info,
	})
	if err != nil {
		return hevy.RequestExercise{}, err
	}
	if len(sets) > 0 && sets[0].Fallback {
		observability.RecordFallbackSet()
	}

	requestSets := make([]hevy.RequestSet, 0, len(sets))
	for _, set := range sets {
		requestSets = append(requestSets, hevy.NewRequestSet(set))
	}

	return hevy.RequestExercise{
		ExerciseTemplateID: templateID,
		Notes:              notes,
		SupersetID:         supersetID,
		Sets:               requestSets,
	}, nil
}

// placeholderPool hands out placeholder template ids, each at most
// once per run.
type placeholderPool struct {
	ids  []string
	next int
}

func (p *placeholderPool) take() (string, error) {
	if p.next >= len(p.ids) {
		return "", domain.ErrPlaceholdersExhausted
	}
	id := p.ids[p.next]
	p.next++
	return id, nil
}
