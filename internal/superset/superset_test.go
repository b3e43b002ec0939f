package superset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

const mixedDescription = `<div><p class="name-and-info">1) Squat<br/>2A) Bench<br/>2B) Row<br/>3) Curl</p></div>`

func TestParseMixedStandaloneAndSuperset(t *testing.T) {
	entries, err := Parse(mixedDescription)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	require.Equal(t, Entry{Position: 1, Name: "Squat", Identifier: "1"}, entries[0])
	require.Equal(t, Entry{Position: 2, Name: "Bench", IsSuperset: true, Group: "A", Order: 2, Identifier: "2A"}, entries[1])
	require.Equal(t, Entry{Position: 3, Name: "Row", IsSuperset: true, Group: "B", Order: 2, Identifier: "2B"}, entries[2])
	require.Equal(t, Entry{Position: 4, Name: "Curl", Identifier: "3"}, entries[3])
}

func TestAnchorsPointAtHighestMember(t *testing.T) {
	entries, err := Parse(mixedDescription)
	require.NoError(t, err)

	require.Equal(t, map[int]int{2: 3}, Anchors(entries))
}

func TestNoSupersetGroupsIsNotAnError(t *testing.T) {
	entries, err := Parse(`<p class="name-and-info">1) Squat<br/>2) Curl</p>`)
	require.NoError(t, err)
	require.Empty(t, Anchors(entries))
}

func TestMissingBlockIsParseError(t *testing.T) {
	_, err := Parse(`<p class="coach-note">rest day</p>`)
	var parseErr *domain.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseSurvivesResidualMarkupAndBlankLines(t *testing.T) {
	entries, err := Parse(`<p class="name-and-info"><strong>1) Squat</strong><br/><br/>2) Curl<br/></p>`)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Squat", entries[0].Name)
	require.Equal(t, 2, entries[1].Position)
}

func TestNotesRendersPlainText(t *testing.T) {
	require.Equal(t, "1) Squat\n2A) Bench\n2B) Row\n3) Curl", Notes(mixedDescription))
	require.Equal(t, "", Notes("<p>no block here</p>"))
}
