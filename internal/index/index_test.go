package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calgen/internal/definition"
	"calgen/internal/model"
)

func parse(t *testing.T, text string) []definition.Group {
	t.Helper()
	groups, err := definition.Parse(text)
	require.NoError(t, err)
	return groups
}

func TestBuildHolidays(t *testing.T) {
	groups := parse(t, "[Holidays]\n25 December Christmas\n1 easter Easter Monday")
	idx := Build(groups, 2024)

	assert.Equal(t, 2024, idx.Year())
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []Entry{{GroupID: 0, Title: "Christmas"}}, idx.OnDay(time.December, 25))
	assert.Equal(t, []Entry{{GroupID: 0, Title: "Easter Monday"}}, idx.OnDay(time.April, 1))
	assert.Nil(t, idx.OnDay(time.March, 31))

	occ := idx.Occurrences()
	require.Len(t, occ, 2)
	assert.Equal(t, model.Date{Year: 2024, Month: time.April, Day: 1}, occ[0].Date)
	assert.Equal(t, "Easter Monday", occ[0].Title)
	assert.Equal(t, "Holidays", occ[0].Group)
	assert.Equal(t, model.Date{Year: 2024, Month: time.December, Day: 25}, occ[1].Date)
}

func TestSameDayOrdering(t *testing.T) {
	// 1 January 2024 is the first Monday of the year.
	text := `[A]
1 Monday Team sync
1 January New Year
[B]
1 January Also new year
1 January Also new year
[C]
1 Monday/January Kickoff
`
	idx := Build(parse(t, text), 2024)

	want := []Entry{
		{GroupID: 0, Title: "Team sync"},
		{GroupID: 0, Title: "New Year"},
		{GroupID: 1, Title: "Also new year"},
		{GroupID: 1, Title: "Also new year"},
		{GroupID: 2, Title: "Kickoff"},
	}
	assert.Equal(t, want, idx.OnDay(time.January, 1))
}

func TestIdempotent(t *testing.T) {
	text := "[A]\n2 Wednesday Standup\n-2 easter Good Friday\n[B]\n12 March Birthday\n"
	groups := parse(t, text)

	a := Build(groups, 2025)
	b := Build(groups, 2025)
	assert.Equal(t, a.Occurrences(), b.Occurrences())
	assert.Equal(t, a.Days(), b.Days())

	// 12 March 2025 is the second Wednesday.
	assert.Equal(t, []Entry{
		{GroupID: 0, Title: "Standup"},
		{GroupID: 1, Title: "Birthday"},
	}, a.OnDay(time.March, 12))
}

func TestOccurrencesSortedWithStableTies(t *testing.T) {
	text := "[A]\n5 May Late\n[B]\n1 May Early\n5 May Same day\n"
	occ := Build(parse(t, text), 2025).Occurrences()

	require.Len(t, occ, 3)
	assert.Equal(t, "Early", occ[0].Title)
	assert.Equal(t, "Late", occ[1].Title)
	assert.Equal(t, "Same day", occ[2].Title)
}

func TestOnReturnsCopy(t *testing.T) {
	idx := Build(parse(t, "[A]\n1 May Labour day\n"), 2025)
	got := idx.OnDay(time.May, 1)
	got[0].Title = "changed"

	assert.Equal(t, "Labour day", idx.OnDay(time.May, 1)[0].Title)
}

func TestDays(t *testing.T) {
	idx := Build(parse(t, "[A]\n3 Friday/July Party\n1 January New Year\n"), 2025)
	assert.Equal(t, []model.Date{
		{Year: 2025, Month: time.January, Day: 1},
		{Year: 2025, Month: time.July, Day: 18},
	}, idx.Days())
}
