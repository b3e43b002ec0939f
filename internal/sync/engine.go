package sync

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Flow is one directional sync step.
type Flow interface {
	Run(ctx context.Context) error
}

// Engine runs the directional flows in dependency order: sources are
// pulled before anything is pushed, so each push works from the
// freshest canonical state.
type Engine struct {
	steps  []step
	logger *log.Logger
}

type step struct {
	name string
	flow Flow
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets a custom logger.
func WithEngineLogger(l *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine wires the six flows. A nil flow is skipped, so partial
// engines (single-flow CLI commands) reuse the same sequencing.
func NewEngine(health, coachPull, hevyPull, resultsPush, assessments, routines Flow, opts ...EngineOption) *Engine {
	e := &Engine{
		steps: []step{
			{"health", health},
			{"coach_pull", coachPull},
			{"hevy_pull", hevyPull},
			{"results_push", resultsPush},
			{"assessments", assessments},
			{"routines", routines},
		},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes every configured flow. A failing flow does not stop the
// later ones; all failures are joined into the returned error. Each run
// gets a correlation id so interleaved cron logs stay attributable.
func (e *Engine) Run(ctx context.Context) error {
	runID := uuid.NewString()
	var errs []error
	for _, s := range e.steps {
		if s.flow == nil {
			continue
		}
		e.logger.Printf("engine: run %s: starting %s", runID, s.name)
		if err := s.flow.Run(ctx); err != nil {
			e.logger.Printf("engine: run %s: %s failed: %v", runID, s.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
