package hevy

import (
	"encoding/json"
	"time"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

// Workout is the wire representation of a logged workout.
type Workout struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CreatedAt   time.Time  `json:"created_at"`
	Exercises   []Exercise `json:"exercises"`
}

// Exercise is one logged exercise within a workout.
type Exercise struct {
	Index              int    `json:"index"`
	Title              string `json:"title"`
	Notes              string `json:"notes"`
	ExerciseTemplateID string `json:"exercise_template_id"`
	SupersetID         *int   `json:"superset_id"`
	Sets               []Set  `json:"sets"`
}

// Set is one logged set.
type Set struct {
	Index           int      `json:"index"`
	Type            string   `json:"type"`
	WeightKg        *float64 `json:"weight_kg"`
	Reps            *int     `json:"reps"`
	DistanceMeters  *int     `json:"distance_meters"`
	DurationSeconds *int     `json:"duration_seconds"`
	RPE             *float64 `json:"rpe"`
}

// Event is either a workout update or a deletion.
type Event struct {
	Type      string    `json:"type"`
	Workout   *Workout  `json:"workout,omitempty"`
	ID        string    `json:"id,omitempty"`
	DeletedAt time.Time `json:"deleted_at,omitempty"`
}

const (
	// EventUpdated marks a created or changed workout.
	EventUpdated = "updated"
	// EventDeleted marks a workout removed on the service.
	EventDeleted = "deleted"
)

// OccurredAt is the instant the event describes, used to order events
// oldest first before applying them.
func (e Event) OccurredAt() time.Time {
	if e.Type == EventDeleted {
		return e.DeletedAt
	}
	if e.Workout != nil {
		return e.Workout.UpdatedAt
	}
	return time.Time{}
}

// EventPage is one page of workout events.
type EventPage struct {
	Page      int     `json:"page"`
	PageCount int     `json:"page_count"`
	Events    []Event `json:"events"`
}

// ExerciseTemplate describes an exercise in the service's library.
type ExerciseTemplate struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Type             string   `json:"type"`
	PrimaryMuscle    string   `json:"primary_muscle_group"`
	SecondaryMuscles []string `json:"secondary_muscle_groups"`
	Equipment        string   `json:"equipment"`
	IsCustom         bool     `json:"is_custom"`
}

// ExerciseTemplatePage is one page of the template library.
type ExerciseTemplatePage struct {
	Page              int                `json:"page"`
	PageCount         int                `json:"page_count"`
	ExerciseTemplates []ExerciseTemplate `json:"exercise_templates"`
}

// Routine mirrors a planned routine.
type Routine struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	UpdatedAt time.Time       `json:"updated_at"`
	CreatedAt time.Time       `json:"created_at"`
	Raw       json.RawMessage `json:"-"`
}

// RoutinePage is one page of routines.
type RoutinePage struct {
	Page      int       `json:"page"`
	PageCount int       `json:"page_count"`
	Routines  []Routine `json:"routines"`
}

// RequestSet is one set in a create-workout or create-routine request.
type RequestSet struct {
	Type            string   `json:"type"`
	WeightKg        *float64 `json:"weight_kg"`
	Reps            *int     `json:"reps"`
	DistanceMeters  *int     `json:"distance_meters"`
	DurationSeconds *int     `json:"duration_seconds"`
	RPE             *float64 `json:"rpe,omitempty"`
}

// RequestExercise is one exercise in a create request.
type RequestExercise struct {
	ExerciseTemplateID string       `json:"exercise_template_id"`
	Notes              string       `json:"notes,omitempty"`
	SupersetID         *int         `json:"superset_id"`
	RestSeconds        *int         `json:"rest_seconds,omitempty"`
	Sets               []RequestSet `json:"sets"`
}

// WorkoutRequest creates a logged workout.
type WorkoutRequest struct {
	Title     string            `json:"title"`
	StartTime string            `json:"start_time,omitempty"`
	EndTime   string            `json:"end_time,omitempty"`
	IsPrivate bool              `json:"is_private"`
	Exercises []RequestExercise `json:"exercises"`
}

// RoutineRequest creates a planned routine.
type RoutineRequest struct {
	Title     string            `json:"title"`
	FolderID  *string           `json:"folder_id"`
	Notes     string            `json:"notes"`
	Exercises []RequestExercise `json:"exercises"`
}

// ToDomain converts the wire workout to the source-local entity graph.
func (w Workout) ToDomain() domain.HevyWorkout {
	out := domain.HevyWorkout{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		StartTime:   w.StartTime,
		EndTime:     w.EndTime,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	for _, ex := range w.Exercises {
		item := domain.HevyWorkoutItem{
			WorkoutID:  w.ID,
			Index:      ex.Index,
			Name:       ex.Title,
			Notes:      ex.Notes,
			SupersetID: ex.SupersetID,
			ExerciseID: ex.ExerciseTemplateID,
		}
		for _, s := range ex.Sets {
			item.Sets = append(item.Sets, domain.HevySet{
				Index:     s.Index,
				Type:      domain.SetType(s.Type),
				WeightKg:  s.WeightKg,
				Reps:      s.Reps,
				DistanceM: s.DistanceMeters,
				DurationS: s.DurationSeconds,
				RPE:       s.RPE,
			})
		}
		out.Items = append(out.Items, item)
	}
	return out
}

// NewRequestSet converts a structured set to its request form.
func NewRequestSet(s domain.Set) RequestSet {
	return RequestSet{
		Type:            string(s.Type),
		WeightKg:        s.WeightKg,
		Reps:            s.Reps,
		DistanceMeters:  s.DistanceMeters,
		DurationSeconds: s.DurationSeconds,
		RPE:             s.RPE,
	}
}
