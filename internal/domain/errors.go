package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkoutNotFound is returned when a lookup by id yields nothing.
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrPlaceholdersExhausted indicates the pool of placeholder exercise
	// templates ran dry within a single push.
	ErrPlaceholdersExhausted = errors.New("placeholder exercise pool exhausted")
)

// UpstreamAPIError is returned by the external service clients for any
// network failure or non-2xx response. It aborts the current unit of
// work and is never retried automatically.
type UpstreamAPIError struct {
	Message    string
	URL        string
	StatusCode int
}

func (e *UpstreamAPIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream request failed: %s (%s)", e.Message, e.URL)
	}
	return fmt.Sprintf("upstream returned %d: %s (%s)", e.StatusCode, e.Message, e.URL)
}

// ParseError signals malformed structural text, such as a coach workout
// description missing its exercise-order block. Fatal for the workout
// being processed, not for the batch.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

// UnsupportedExerciseTypeError is returned when no formatter exists for
// an exercise type. The calling sync must halt for that item rather
// than silently drop its sets.
type UnsupportedExerciseTypeError struct {
	Type ExerciseType
}

func (e *UnsupportedExerciseTypeError) Error() string {
	return fmt.Sprintf("exercise type %q is not supported", string(e.Type))
}
