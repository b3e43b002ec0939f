package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingFlow struct {
	name string
	log  *[]string
	err  error
}

func (f *recordingFlow) Run(context.Context) error {
	*f.log = append(*f.log, f.name)
	return f.err
}

func TestEngineRunsFlowsInOrderAndCollectsFailures(t *testing.T) {
	var order []string
	flow := func(name string, err error) Flow {
		return &recordingFlow{name: name, log: &order, err: err}
	}
	broken := errors.New("boom")

	engine := NewEngine(
		flow("health", nil),
		flow("coach", broken),
		flow("hevy", nil),
		nil,
		flow("assessments", nil),
		flow("routines", nil),
		WithEngineLogger(quiet()),
	)

	err := engine.Run(context.Background())
	require.ErrorIs(t, err, broken)
	require.Equal(t, []string{"health", "coach", "hevy", "assessments", "routines"}, order,
		"a failing flow never blocks the ones after it, a nil flow is skipped")
}
