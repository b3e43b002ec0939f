// Package domain defines the entities shared by the sync engine: the
// source-local mirrors of each external service, the structured set
// model, and the error taxonomy. The canonical cross-system rows live
// only in the datastore; their shape is the schema's.
package domain

// SetType classifies a single set within a workout item.
type SetType string

const (
	SetTypeNormal  SetType = "normal"
	SetTypeWarmup  SetType = "warmup"
	SetTypeFailure SetType = "failure"
	SetTypeDropset SetType = "dropset"
)

// ExerciseType selects how structured sets are rendered as free text.
type ExerciseType string

const (
	ExerciseRepsOnly            ExerciseType = "reps_only"
	ExerciseWeightReps          ExerciseType = "weight_reps"
	ExerciseDuration            ExerciseType = "duration"
	ExerciseWeightDuration      ExerciseType = "weight_duration"
	ExerciseDistanceDuration    ExerciseType = "distance_duration"
	ExerciseShortDistanceWeight ExerciseType = "short_distance_weight"
	ExerciseBodyweightWeighted  ExerciseType = "bodyweight_weighted"
	ExerciseBodyweightAssisted  ExerciseType = "bodyweight_assisted"
)

// Set is one structured set. Measurements are optional because each
// exercise type only populates the fields it measures.
type Set struct {
	Index           int
	Type            SetType
	WeightKg        *float64
	Reps            *int
	DistanceMeters  *int
	DurationSeconds *int
	RPE             *float64
	// Fallback marks a set fabricated by the transcription engine when
	// the oracle could not parse anything. Fabricated sets must never be
	// mistaken for real training data downstream.
	Fallback bool
}

// Float returns a pointer to v. Convenience for building optional fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Str returns a pointer to v.
func Str(v string) *string { return &v }
