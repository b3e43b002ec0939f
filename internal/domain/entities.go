package domain

import "time"

// PlaceholderExerciseName marks a stand-in template on the workout-log
// side used when no real cross-system match exists yet.
const PlaceholderExerciseName = "#####PLACEHOLDER#####"

// ---- Workout-log service (source-local) ----

// HevyWorkout mirrors one workout from the workout-log service, keyed
// by that service's uuid-style id.
type HevyWorkout struct {
	ID          string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Items       []HevyWorkoutItem
}

// HevyWorkoutItem is one logged exercise within a HevyWorkout.
type HevyWorkoutItem struct {
	ID         int64
	WorkoutID  string
	Index      int
	Name       string
	Notes      string
	SupersetID *int
	ExerciseID string
	Sets       []HevySet
}

// HevySet mirrors one logged set.
type HevySet struct {
	ID            int64
	WorkoutItemID int64
	Index         int
	Type          SetType
	WeightKg      *float64
	Reps          *int
	DistanceM     *int
	DurationS     *int
	RPE           *float64
}

// HevyExercise mirrors an exercise template from the workout-log
// service. Type drives the transcription formatter.
type HevyExercise struct {
	ID        string
	Name      string
	Type      ExerciseType
	Equipment string
	IsDefault bool
}

// ---- Coaching platform (source-local) ----

// CoachWorkout mirrors a programmed workout from the coaching platform.
type CoachWorkout struct {
	ID               int64
	Title            string
	Due              time.Time
	ShortDescription string
	State            string
	RestDay          bool
	Items            []CoachWorkoutItem
}

// CoachWorkoutItem is one programmed exercise. Info is the coach's
// free-text prescription, Result the athlete's free-text outcome.
type CoachWorkoutItem struct {
	ID           int64
	WorkoutID    int64
	Name         string
	Info         string
	Result       string
	IsCircuit    bool
	State        string
	Position     int
	ExerciseID   *int64
	AssessmentID *int64
}

// CoachExercise mirrors the coaching platform's exercise library entry.
type CoachExercise struct {
	ID          int64
	Name        string
	Description string
	URL         string
}

// CoachAssessmentItem is a recorded assessment value pushed to (or
// pulled from) the coaching platform.
type CoachAssessmentItem struct {
	ID           int64
	AssessmentID int64
	RecordedAt   time.Time
	Value        string
}

// ---- Health-metrics export (source-local) ----

// HealthRecord is one (metric, timestamp, value) triple parsed from the
// health export CSVs.
type HealthRecord struct {
	TypeName   string
	Unit       string
	RecordedAt time.Time
	Value      float64
}
