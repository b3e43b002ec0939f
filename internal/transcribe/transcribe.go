// Package transcribe converts structured set data to the free-text
// result strings the coaching platform expects, and back again through
// an external natural-language parser. Formatting is keyed by exercise
// type; each type has exactly one formatter.
package transcribe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

type formatter func(sets []domain.Set) string

var formatters = map[domain.ExerciseType]formatter{
	domain.ExerciseRepsOnly:            formatRepsOnly,
	domain.ExerciseWeightReps:          formatWeightReps,
	domain.ExerciseDuration:            formatDuration,
	domain.ExerciseWeightDuration:      formatWeightDuration,
	domain.ExerciseDistanceDuration:    formatDistanceDuration,
	domain.ExerciseShortDistanceWeight: formatShortDistanceWeight,
	domain.ExerciseBodyweightWeighted:  formatWeightReps,
	domain.ExerciseBodyweightAssisted:  formatWeightReps,
}

// Transcribe renders sets as the result text for the given exercise
// type. An unmapped type returns *domain.UnsupportedExerciseTypeError;
// the caller must halt for that item rather than drop its data.
func Transcribe(exerciseType domain.ExerciseType, sets []domain.Set) (string, error) {
	format, ok := formatters[exerciseType]
	if !ok {
		return "", &domain.UnsupportedExerciseTypeError{Type: exerciseType}
	}
	return format(sets), nil
}

func formatRepsOnly(sets []domain.Set) string {
	var b strings.Builder
	for _, s := range sets {
		if s.Type == domain.SetTypeDropset {
			// A dropset continues the previous line.
			chopNewline(&b)
			fmt.Fprintf(&b, " > %d\n", intVal(s.Reps))
			continue
		}
		fmt.Fprintf(&b, "%d reps\n", intVal(s.Reps))
	}
	return b.String()
}

func formatWeightReps(sets []domain.Set) string {
	var b strings.Builder
	for _, s := range sets {
		switch s.Type {
		case domain.SetTypeDropset:
			chopNewline(&b)
			fmt.Fprintf(&b, " > %d x %s kg\n", intVal(s.Reps), weight(s.WeightKg))
		case domain.SetTypeWarmup:
			fmt.Fprintf(&b, "Warmup Set: %d x %s kg\n", intVal(s.Reps), weight(s.WeightKg))
		default:
			fmt.Fprintf(&b, "%d x %s kg\n", intVal(s.Reps), weight(s.WeightKg))
		}
	}
	return b.String()
}

func formatDuration(sets []domain.Set) string {
	var b strings.Builder
	for _, s := range sets {
		b.WriteString(FormatDuration(intVal(s.DurationSeconds)))
		b.WriteByte('\n')
	}
	return b.String()
}

func formatWeightDuration(sets []domain.Set) string {
	var b strings.Builder
	for _, s := range sets {
		fmt.Fprintf(&b, "%s kg for %s\n", weight(s.WeightKg), FormatDuration(intVal(s.DurationSeconds)))
	}
	return b.String()
}

func formatDistanceDuration(sets []domain.Set) string {
	var b strings.Builder
	for _, s := range sets {
		fmt.Fprintf(&b, "%dm in %s @%s\n",
			intVal(s.DistanceMeters),
			FormatDuration(intVal(s.DurationSeconds)),
			pace(intVal(s.DistanceMeters), intVal(s.DurationSeconds)))
	}
	return b.String()
}

func formatShortDistanceWeight(sets []domain.Set) string {
	var b strings.Builder
	for _, s := range sets {
		fmt.Fprintf(&b, "%s kg for %dm\n", weight(s.WeightKg), intVal(s.DistanceMeters))
	}
	return b.String()
}

// FormatDuration renders whole hours, minutes and seconds, omitting
// zero-valued units. Seconds are always shown when nothing else is.
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	remaining := seconds % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hr", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d min", minutes))
	}
	if remaining > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d sec", remaining))
	}
	return strings.Join(parts, " ")
}

// pace renders minutes:seconds per kilometer with one decimal on the
// seconds. Zero distance yields a fixed string instead of dividing.
func pace(distanceMeters, durationSeconds int) string {
	if distanceMeters == 0 {
		return "0.00 min/km"
	}
	secondsPerKm := float64(durationSeconds) / (float64(distanceMeters) / 1000)
	minutes := int(secondsPerKm) / 60
	seconds := secondsPerKm - float64(minutes*60)
	return fmt.Sprintf("%d:%04.1f min/km", minutes, seconds)
}

func weight(kg *float64) string {
	if kg == nil {
		return "0"
	}
	return strconv.FormatFloat(*kg, 'f', -1, 64)
}

func intVal(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// chopNewline removes the trailing newline so the next write continues
// the previous line.
func chopNewline(b *strings.Builder) {
	s := b.String()
	if strings.HasSuffix(s, "\n") {
		b.Reset()
		b.WriteString(s[:len(s)-1])
	}
}
