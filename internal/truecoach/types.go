package truecoach

import (
	"time"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

// Workout states used by the list endpoint and the state machine.
const (
	StatePending   = "pending"
	StateCompleted = "completed"
	StateMissed    = "missed"
)

// State events accepted by the workout update endpoint.
const (
	EventMarkCompleted = "mark_as_completed"
	EventMarkMissed    = "mark_as_missed"
)

// Workout is the wire representation of a programmed workout. Items are
// sideloaded on the page, referenced by WorkoutItemIDs.
type Workout struct {
	ID               int64   `json:"id"`
	Due              string  `json:"due"`
	ShortDescription string  `json:"short_description"`
	Title            *string `json:"title"`
	State            string  `json:"state"`
	RestDay          bool    `json:"rest_day"`
	ClientID         int64   `json:"client_id"`
	WorkoutItemIDs   []int64 `json:"workout_item_ids"`
}

// WorkoutItem is one programmed exercise. Info is the coach's free-text
// prescription, Result the athlete's free-text outcome.
type WorkoutItem struct {
	ID           int64  `json:"id"`
	WorkoutID    int64  `json:"workout_id"`
	Name         string `json:"name"`
	Info         string `json:"info"`
	Result       string `json:"result"`
	IsCircuit    bool   `json:"is_circuit"`
	State        string `json:"state"`
	Position     int    `json:"position"`
	ExerciseID   *int64 `json:"exercise_id"`
	AssessmentID *int64 `json:"assessment_id"`
}

// Meta is the pagination envelope of list responses.
type Meta struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	PerPage    int `json:"per_page"`
	TotalCount int `json:"total_count"`
}

// WorkoutPage is one page of workouts with their sideloaded items.
type WorkoutPage struct {
	Workouts     []Workout     `json:"workouts"`
	WorkoutItems []WorkoutItem `json:"workout_items"`
	Meta         Meta          `json:"meta"`
}

// UpdateItemRequest carries the mutable fields of a workout item. The
// API requires the full record back, not a patch.
type UpdateItemRequest struct {
	ID           int64   `json:"id"`
	WorkoutID    int64   `json:"workout_id"`
	Name         string  `json:"name"`
	Info         string  `json:"info"`
	Result       string  `json:"result"`
	IsCircuit    bool    `json:"is_circuit"`
	State        string  `json:"state"`
	StateEvent   *string `json:"state_event,omitempty"`
	Position     int     `json:"position"`
	ExerciseID   *int64  `json:"exercise_id"`
	AssessmentID *int64  `json:"assessment_id"`
}

// Exercise is the coaching platform's library entry.
type Exercise struct {
	ID           int64   `json:"id"`
	Default      bool    `json:"default"`
	ExerciseName string  `json:"exercise_name"`
	Description  *string `json:"description"`
	URL          *string `json:"url"`
}

// ExercisePage is the full exercise library response.
type ExercisePage struct {
	Exercises []Exercise `json:"exercises"`
}

// Assessment names a tracked quantity on the coaching platform.
type Assessment struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Units string `json:"units"`
}

// AssessmentItem is one recorded assessment value.
type AssessmentItem struct {
	ID           int64  `json:"id"`
	AssessmentID int64  `json:"assessment_id"`
	Value        string `json:"value"`
	Date         string `json:"date"`
	CreatedAt    string `json:"created_at"`
}

// AssessmentPage is one assessment with its recorded items.
type AssessmentPage struct {
	Assessment      Assessment       `json:"assessment"`
	AssessmentItems []AssessmentItem `json:"assessment_items"`
}

// AssessmentItemRequest posts a new recorded value.
type AssessmentItemRequest struct {
	AssessmentID int64  `json:"assessment_id,string"`
	Value        string `json:"value"`
	Date         string `json:"date"`
}

// Due date layouts seen on the wire, most common first.
var dueLayouts = []string{"2006-01-02", time.RFC3339}

func parseDue(due string) time.Time {
	for _, layout := range dueLayouts {
		if t, err := time.Parse(layout, due); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ToDomain resolves the sideloaded items into a source-local workout.
func (w Workout) ToDomain(items []WorkoutItem) domain.CoachWorkout {
	title := ""
	if w.Title != nil {
		title = *w.Title
	}
	out := domain.CoachWorkout{
		ID:               w.ID,
		Title:            title,
		Due:              parseDue(w.Due),
		ShortDescription: w.ShortDescription,
		State:            w.State,
		RestDay:          w.RestDay,
	}
	for _, item := range items {
		if item.WorkoutID != w.ID {
			continue
		}
		out.Items = append(out.Items, item.ToDomain())
	}
	return out
}

// ToDomain converts a wire workout item to its source-local form.
func (i WorkoutItem) ToDomain() domain.CoachWorkoutItem {
	return domain.CoachWorkoutItem{
		ID:           i.ID,
		WorkoutID:    i.WorkoutID,
		Name:         i.Name,
		Info:         i.Info,
		Result:       i.Result,
		IsCircuit:    i.IsCircuit,
		State:        i.State,
		Position:     i.Position,
		ExerciseID:   i.ExerciseID,
		AssessmentID: i.AssessmentID,
	}
}

// NewUpdateItemRequest echoes a stored item back with its (possibly
// rewritten) result text.
func NewUpdateItemRequest(item domain.CoachWorkoutItem) UpdateItemRequest {
	return UpdateItemRequest{
		ID:           item.ID,
		WorkoutID:    item.WorkoutID,
		Name:         item.Name,
		Info:         item.Info,
		Result:       item.Result,
		IsCircuit:    item.IsCircuit,
		State:        item.State,
		Position:     item.Position,
		ExerciseID:   item.ExerciseID,
		AssessmentID: item.AssessmentID,
	}
}
