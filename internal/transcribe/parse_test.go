package transcribe

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

type stubParser struct {
	sets []domain.Set
	err  error
	last Request
}

func (s *stubParser) ParseSets(_ context.Context, req Request) ([]domain.Set, error) {
	s.last = req
	return s.sets, s.err
}

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func TestEngineFallsBackToPlaceholderSet(t *testing.T) {
	parser := &stubParser{}
	engine := NewEngine(parser, WithLogger(quiet()))

	sets, err := engine.Sets(context.Background(), Request{ExerciseType: domain.ExerciseDuration, Info: "3 rounds easy"})
	require.NoError(t, err)
	require.Len(t, sets, 1)
	require.True(t, sets[0].Fallback, "fabricated set must be tagged")
	require.Equal(t, domain.SetTypeNormal, sets[0].Type)
	require.Equal(t, 60, *sets[0].DurationSeconds)
}

func TestEngineIndexesParsedSets(t *testing.T) {
	parser := &stubParser{sets: []domain.Set{
		{Type: domain.SetTypeNormal, Reps: domain.Int(10)},
		{Type: domain.SetTypeNormal, Reps: domain.Int(8)},
	}}
	engine := NewEngine(parser, WithLogger(quiet()))

	sets, err := engine.Sets(context.Background(), Request{ExerciseType: domain.ExerciseRepsOnly, Info: "10, 8"})
	require.NoError(t, err)
	require.Equal(t, 0, sets[0].Index)
	require.Equal(t, 1, sets[1].Index)
	require.False(t, sets[0].Fallback)
	require.Equal(t, domain.ExerciseRepsOnly, parser.last.ExerciseType)
}

func TestEnginePropagatesOracleError(t *testing.T) {
	oracleErr := errors.New("oracle unavailable")
	engine := NewEngine(&stubParser{err: oracleErr}, WithLogger(quiet()))

	_, err := engine.Sets(context.Background(), Request{ExerciseType: domain.ExerciseRepsOnly})
	require.ErrorIs(t, err, oracleErr)
}
