package sync

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/cabell132/FitnessTracker/internal/domain"
	"github.com/cabell132/FitnessTracker/internal/hevy"
	"github.com/cabell132/FitnessTracker/internal/linker"
	"github.com/cabell132/FitnessTracker/internal/observability"
	"github.com/cabell132/FitnessTracker/internal/persistence/postgres"
)

// EventSource pages through workout events on the log service.
type EventSource interface {
	WorkoutEvents(ctx context.Context, since time.Time, page, perPage int) (*hevy.EventPage, error)
	ExerciseTemplate(ctx context.Context, id string) (*hevy.ExerciseTemplate, error)
}

// HevyStore absorbs workout events into the canonical store.
type HevyStore interface {
	ApplyHevyWorkout(ctx context.Context, w domain.HevyWorkout, coachID *int64, match postgres.MatchFunc) (int64, error)
	DeleteHevyWorkout(ctx context.Context, hevyID string) error
	HevyExercise(ctx context.Context, id string) (*domain.HevyExercise, error)
	UpsertHevyExercise(ctx context.Context, e domain.HevyExercise) error
	RecomputeCalories(ctx context.Context) error
}

// hevyEventsPerPage matches the service's maximum page size.
const hevyEventsPerPage = 10

// HevyPuller applies workout events from the log service oldest first.
type HevyPuller struct {
	source EventSource
	store  HevyStore
	marks  WatermarkStore
	linker *linker.Linker
	logger *log.Logger
}

// HevyOption configures a HevyPuller.
type HevyOption func(*HevyPuller)

// WithHevyLogger sets a custom logger.
func WithHevyLogger(l *log.Logger) HevyOption {
	return func(p *HevyPuller) { p.logger = l }
}

// NewHevyPuller constructs a HevyPuller.
func NewHevyPuller(source EventSource, store HevyStore, marks WatermarkStore, opts ...HevyOption) *HevyPuller {
	p := &HevyPuller{
		source: source,
		store:  store,
		marks:  marks,
		linker: linker.New(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run pulls all events since the watermark and applies them in
// chronological order, so the latest state of a workout always wins.
// One failing workout is logged and skipped; the watermark only
// advances when every event applied cleanly.
func (p *HevyPuller) Run(ctx context.Context) error {
	marks, err := p.marks.Load()
	if err != nil {
		return fmt.Errorf("load watermarks: %w", err)
	}
	since := marks.Get("hevy", time.Time{})

	events, err := p.collectEvents(ctx, since)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt().Before(events[j].OccurredAt())
	})

	failures := 0
	var latest time.Time
	for _, event := range events {
		if err := p.applyEvent(ctx, event); err != nil {
			failures++
			p.logger.Printf("hevy: skipping event for workout %s: %v", eventWorkoutID(event), err)
			observability.RecordWorkoutFailure("hevy_pull")
			continue
		}
		observability.RecordWorkoutSynced("hevy_pull")
		if t := event.OccurredAt(); t.After(latest) {
			latest = t
		}
	}

	if err := p.store.RecomputeCalories(ctx); err != nil {
		return fmt.Errorf("recompute calories: %w", err)
	}

	if failures > 0 {
		p.logger.Printf("hevy: %d of %d events failed, watermark stays at %s", failures, len(events), since.Format(time.RFC3339))
		return nil
	}

	marks.Set("hevy", latest)
	if err := p.marks.Save(marks); err != nil {
		return fmt.Errorf("save watermarks: %w", err)
	}
	observability.RecordWatermark("hevy", latest)
	return nil
}

func (p *HevyPuller) collectEvents(ctx context.Context, since time.Time) ([]hevy.Event, error) {
	var events []hevy.Event
	for page := 1; ; page++ {
		res, err := p.source.WorkoutEvents(ctx, since, page, hevyEventsPerPage)
		if err != nil {
			return nil, fmt.Errorf("list workout events: %w", err)
		}
		events = append(events, res.Events...)
		if page >= res.PageCount {
			break
		}
	}
	return events, nil
}

func (p *HevyPuller) applyEvent(ctx context.Context, event hevy.Event) error {
	switch event.Type {
	case hevy.EventDeleted:
		return p.store.DeleteHevyWorkout(ctx, event.ID)
	case hevy.EventUpdated:
		if event.Workout == nil {
			return fmt.Errorf("updated event carries no workout")
		}
		return p.applyUpdate(ctx, event.Workout.ToDomain())
	default:
		p.logger.Printf("hevy: ignoring unknown event type %q", event.Type)
		return nil
	}
}

func (p *HevyPuller) applyUpdate(ctx context.Context, w domain.HevyWorkout) error {
	if err := p.cacheTemplates(ctx, w); err != nil {
		return err
	}

	var coachID *int64
	if id, ok := ParseAnchor(w.Title); ok {
		coachID = &id
	} else {
		p.logger.Printf("hevy: workout %s title %q has no coach anchor, keeping it unlinked", w.ID, w.Title)
	}

	_, err := p.store.ApplyHevyWorkout(ctx, w, coachID, p.linker.Link)
	return err
}

// cacheTemplates makes sure every referenced exercise template is
// mirrored locally; the results push needs its type to pick a
// formatter.
func (p *HevyPuller) cacheTemplates(ctx context.Context, w domain.HevyWorkout) error {
	for _, item := range w.Items {
		if item.ExerciseID == "" {
			continue
		}
		cached, err := p.store.HevyExercise(ctx, item.ExerciseID)
		if err != nil {
			return err
		}
		if cached != nil {
			continue
		}
		template, err := p.source.ExerciseTemplate(ctx, item.ExerciseID)
		if err != nil {
			return fmt.Errorf("fetch exercise template %s: %w", item.ExerciseID, err)
		}
		if err := p.store.UpsertHevyExercise(ctx, domain.HevyExercise{
			ID:        template.ID,
			Name:      template.Title,
			Type:      domain.ExerciseType(template.Type),
			Equipment: template.Equipment,
			IsDefault: !template.IsCustom,
		}); err != nil {
			return err
		}
	}
	return nil
}

func eventWorkoutID(event hevy.Event) string {
	if event.Workout != nil {
		return event.Workout.ID
	}
	return event.ID
}
