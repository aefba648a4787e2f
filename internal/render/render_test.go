package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"calgen/internal/definition"
	"calgen/internal/index"
	"calgen/internal/layout"
	"calgen/internal/model"
)

const sample = `[Holidays:color:red;border:1px solid]
25 December Christmas
1 easter Easter Monday
[Family]
12 March Ann & Bob
`

func setup(t *testing.T, year int) ([]definition.Group, *index.Index, *Renderer) {
	t.Helper()
	groups, err := definition.Parse(sample)
	require.NoError(t, err)
	r, err := New(Options{Title: "Family calendar"})
	require.NoError(t, err)
	return groups, index.Build(groups, year), r
}

func TestYearlyDocument(t *testing.T) {
	groups, idx, r := setup(t, 2024)

	var buf bytes.Buffer
	require.NoError(t, r.Yearly(&buf, 2024, groups, layout.Yearly(idx, layout.YearlyOptions{})))
	out := buf.String()

	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, "<title>Family calendar 2024</title>")
	assert.Contains(t, out, ".eventgroup0 { color:red;border:1px solid }")
	assert.NotContains(t, out, ".eventgroup1 {")
	assert.Contains(t, out, `<body class="fullyear">`)
	assert.Contains(t, out, "<h1>Year 2024</h1>")
	assert.Contains(t, out, `<span class="event eventgroup0">Easter Monday</span>`)
	assert.Contains(t, out, `<span class="event eventgroup1">Ann &amp; Bob</span>`)
	assert.Contains(t, out, ShadedBackground)
	assert.Contains(t, out, `<span class="daynum">01</span>`)
	assert.Equal(t, 1, strings.Count(out, `<section class="page yearly">`))
	assert.Equal(t, 12*layout.MinYearlyRows, strings.Count(out, `<div class="cell`))
}

func TestHalfYearDocument(t *testing.T) {
	groups, idx, r := setup(t, 2024)

	var buf bytes.Buffer
	require.NoError(t, r.Yearly(&buf, 2024, groups, layout.Yearly(idx, layout.YearlyOptions{MonthsPerPage: 6})))
	out := buf.String()

	assert.Contains(t, out, `<body class="halfyear">`)
	assert.Contains(t, out, "<h1>Half-Year 2024</h1>")
	assert.Equal(t, 2, strings.Count(out, `<section class="page yearly">`))
}

func TestMonthlyDocument(t *testing.T) {
	groups, idx, r := setup(t, 2025)

	var buf bytes.Buffer
	require.NoError(t, r.Monthly(&buf, 2025, groups, layout.Monthly(idx)))
	out := buf.String()

	assert.Equal(t, 12, strings.Count(out, `<section class="page monthly">`))
	assert.Contains(t, out, `<div class="cell label" style="grid-column: span 2">March 2025</div>`)
	assert.Contains(t, out, `<div class="head ">Monday</div>`)
	assert.Contains(t, out, `<div class="head shadedBackground">Sunday</div>`)
	assert.Contains(t, out, "Ann &amp; Bob")
}

func TestDiaryDocument(t *testing.T) {
	groups, idx, r := setup(t, 2024)

	var buf bytes.Buffer
	require.NoError(t, r.Diary(&buf, 2024, groups, layout.Diary(idx, layout.DiaryOptions{})))
	out := buf.String()

	assert.Equal(t, 3, strings.Count(out, `<section class="page diary">`))
	assert.Equal(t, 24, strings.Count(out, `<div class="section">`))
	assert.Contains(t, out, "<h2>DECEMBER (2)</h2>")
	assert.Contains(t, out, "<h2>JANUARY</h2>")
	assert.Contains(t, out, `<span class="weekdayname">Mo</span>`)
	assert.Contains(t, out, "Christmas")
}

func TestLocalizedNames(t *testing.T) {
	names := model.DefaultNames()
	names.Months[2] = "März"
	names.Weekdays[0] = "Montag"

	r, err := New(Options{Language: language.German, Names: names})
	require.NoError(t, err)

	var buf bytes.Buffer
	idx := index.Build(nil, 2025)
	require.NoError(t, r.Monthly(&buf, 2025, nil, layout.Monthly(idx)))
	out := buf.String()

	assert.Contains(t, out, `<html lang="de">`)
	assert.Contains(t, out, "März 2025")
	assert.Contains(t, out, ">Montag</div>")
	assert.Contains(t, out, "<title>Calendar 2025</title>")
}

func TestBackground(t *testing.T) {
	assert.Equal(t, ShadedBackground, Background(true))
	assert.Equal(t, "", Background(false))
	assert.Equal(t, "Mo", shortName(2, "Monday"))
	assert.Equal(t, "Mä", shortName(2, "März"))
	assert.Equal(t, "M", shortName(2, "M"))
}

func TestStyleCannotCloseStyleElement(t *testing.T) {
	groups, err := definition.Parse("[X:color:red}</style><script>alert(1)</script>]\n1 May Day\n")
	require.NoError(t, err)
	r, err := New(Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Yearly(&buf, 2025, groups, layout.Yearly(index.Build(groups, 2025), layout.YearlyOptions{})))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.Equal(t, 1, strings.Count(out, "</style>"))
	assert.Contains(t, out, `.eventgroup0 { color:red}\3c /style>\3c script>alert(1)\3c /script> }`)
}
