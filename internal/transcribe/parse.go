package transcribe

import (
	"context"
	"log"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

// Request is the payload handed to the natural-language set parser.
type Request struct {
	ExerciseType domain.ExerciseType `json:"exercise_type"`
	Info         string              `json:"info"`
	Result       string              `json:"result,omitempty"`
}

// SetParser is the external text-to-structured-data oracle. An empty
// slice with a nil error means "could not parse".
type SetParser interface {
	ParseSets(ctx context.Context, req Request) ([]domain.Set, error)
}

// Engine drives the text-to-structured direction. It owns the fallback
// policy: when the oracle returns nothing, a single placeholder set is
// substituted so the push can proceed, tagged so it is never mistaken
// for a real parse.
type Engine struct {
	parser SetParser
	logger *log.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine constructs an Engine around a parser.
func NewEngine(parser SetParser, opts ...EngineOption) *Engine {
	e := &Engine{parser: parser, logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sets parses free text into structured sets via the oracle. Oracle
// errors propagate. An empty oracle result yields the fallback: one
// normal 60-second set with Fallback set.
func (e *Engine) Sets(ctx context.Context, req Request) ([]domain.Set, error) {
	sets, err := e.parser.ParseSets(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		e.logger.Printf("oracle returned no sets for %q item, using fallback placeholder", req.ExerciseType)
		return []domain.Set{FallbackSet()}, nil
	}
	for i := range sets {
		sets[i].Index = i
	}
	return sets, nil
}

// FallbackSet is the last-resort placeholder used when nothing could be
// parsed from the free text.
func FallbackSet() domain.Set {
	return domain.Set{
		Type:            domain.SetTypeNormal,
		DurationSeconds: domain.Int(60),
		Fallback:        true,
	}
}
