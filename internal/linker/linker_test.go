package linker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func summaries(items ...Summary) []Summary { return items }

func pairedIDs(pairs []Pair) map[string]string {
	out := make(map[string]string)
	for _, p := range pairs {
		if p.Matched() {
			out[*p.Left] = *p.Right
		}
	}
	return out
}

func TestPositionalMatchBeatsDissimilarNames(t *testing.T) {
	l := New()

	pairs := l.Link(
		summaries(Summary{NativeID: "h1", Name: "Nordic Curl", Position: 1}),
		summaries(Summary{NativeID: "c1", Name: "Sled Push", Position: 1}),
	)

	require.Len(t, pairs, 1)
	require.True(t, pairs[0].Matched())
	require.Equal(t, "h1", *pairs[0].Left)
	require.Equal(t, "c1", *pairs[0].Right)
}

func TestExactMatchIsCaseAndWhitespaceInsensitive(t *testing.T) {
	l := New()

	pairs := l.Link(
		summaries(Summary{NativeID: "h1", Name: "bench  press", Position: 1}),
		summaries(Summary{NativeID: "c1", Name: "Bench Press", Position: 2}),
	)

	require.Equal(t, map[string]string{"h1": "c1"}, pairedIDs(pairs))
}

func TestFuzzyThresholdBoundary(t *testing.T) {
	l := New()

	// Token-sort ratio of abcd/abce is 75: below the threshold, no pair.
	pairs := l.Link(
		summaries(Summary{NativeID: "h1", Name: "abcd", Position: 1}),
		summaries(Summary{NativeID: "c1", Name: "abce", Position: 2}),
	)
	require.Empty(t, pairedIDs(pairs))
	require.Len(t, pairs, 2)

	// abcde/abcdf scores exactly 80: at the threshold, must pair.
	pairs = l.Link(
		summaries(Summary{NativeID: "h1", Name: "abcde", Position: 1}),
		summaries(Summary{NativeID: "c1", Name: "abcdf", Position: 2}),
	)
	require.Equal(t, map[string]string{"h1": "c1"}, pairedIDs(pairs))
}

func TestFuzzyGreedyHighestScoreFirst(t *testing.T) {
	l := New()

	pairs := l.Link(
		summaries(
			Summary{NativeID: "h1", Name: "Incline Dumbbell Bench Press", Position: 1},
			Summary{NativeID: "h2", Name: "Dumbbell Bench Press", Position: 2},
		),
		summaries(
			Summary{NativeID: "c1", Name: "Bench Press (Dumbbell)", Position: 3},
			Summary{NativeID: "c2", Name: "Incline Bench Press (Dumbbell)", Position: 4},
		),
	)

	got := pairedIDs(pairs)
	require.Equal(t, "c1", got["h2"], "the perfect-score pair must be consumed first")
	require.Equal(t, "c2", got["h1"])
}

func TestOverrideTableCatchesVendorVariants(t *testing.T) {
	l := New()

	pairs := l.Link(
		summaries(Summary{NativeID: "h1", Name: "KB Swing", Position: 1}),
		summaries(Summary{NativeID: "c1", Name: "Kettlebell Swing", Position: 2}),
	)

	require.Equal(t, map[string]string{"h1": "c1"}, pairedIDs(pairs))
}

func TestEmptySideEmitsAllUnmatched(t *testing.T) {
	l := New()

	pairs := l.Link(nil, summaries(
		Summary{NativeID: "c1", Name: "Row", Position: 1},
		Summary{NativeID: "c2", Name: "Curl", Position: 2},
	))

	require.Len(t, pairs, 2)
	for _, p := range pairs {
		require.Nil(t, p.Left)
		require.NotNil(t, p.Right)
	}
}

func TestDuplicateNamesMatchInInputOrder(t *testing.T) {
	l := New()

	pairs := l.Link(
		summaries(
			Summary{NativeID: "h1", Name: "Plank", Position: 1},
			Summary{NativeID: "h2", Name: "Plank", Position: 2},
		),
		summaries(
			Summary{NativeID: "c1", Name: "Plank", Position: 3},
			Summary{NativeID: "c2", Name: "Plank", Position: 4},
		),
	)

	require.Equal(t, map[string]string{"h1": "c1", "h2": "c2"}, pairedIDs(pairs))
}

func TestNoNativeIDAppearsTwice(t *testing.T) {
	l := New()

	left := summaries(
		Summary{NativeID: "h1", Name: "Back Squat", Position: 1},
		Summary{NativeID: "h2", Name: "Back Squat", Position: 1},
		Summary{NativeID: "h3", Name: "Deadlift", Position: 2},
	)
	right := summaries(
		Summary{NativeID: "c1", Name: "Squat (Barbell)", Position: 1},
		Summary{NativeID: "c2", Name: "Deadlift", Position: 2},
	)

	pairs := l.Link(left, right)

	seen := make(map[string]int)
	for _, p := range pairs {
		if p.Left != nil {
			seen["L"+*p.Left]++
		}
		if p.Right != nil {
			seen["R"+*p.Right]++
		}
	}
	for id, n := range seen {
		require.Equal(t, 1, n, "native id %s emitted more than once", id)
	}
	require.Len(t, pairs, 3)
}
