package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calgen/internal/pipeline"
)

const defs = `[Holidays:color: red]
25 December Christmas
-2 easter Good Friday

[Birthdays]
12 March Ann
`

// run executes the CLI with a throwaway config file next to a definitions
// file and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "events.txt")
	require.NoError(t, os.WriteFile(input, []byte(defs), 0o600))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "calgen.yaml"), "--input", input}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "calgen dev"))

	out, err = run(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "calgen version dev\n", out)
}

func TestListOccurrences(t *testing.T) {
	out, err := run(t, "", "list", "--year", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-04-18")
	assert.Contains(t, out, "Good Friday")
	assert.Contains(t, out, "Wednesday")
	assert.Contains(t, out, "2025-12-25")
	assert.Less(t, strings.Index(out, "2025-03-12"), strings.Index(out, "2025-04-18"))

	out, err = run(t, "", "list", "--year", "2025", "--years", "2", "--group", "birthdays")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-03-12")
	assert.NotContains(t, out, "Christmas")
}

func TestListRules(t *testing.T) {
	out, err := run(t, "", "list", "--rules")
	require.NoError(t, err)
	assert.Contains(t, out, "-2 easter")
	assert.Contains(t, out, "eventgroup1")
	assert.Contains(t, out, "12 March")
}

func TestListUnknownGroup(t *testing.T) {
	_, err := run(t, "", "list", "--group", "Nobody")
	assert.ErrorIs(t, err, pipeline.ErrUnknownGroup)
}

func TestRenderHTML(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	out, err := run(t, "", "render", "--year", "2025", "--kind", "yearly", "--kind", "diary", "--format", "html", "--out", outDir)
	require.NoError(t, err)

	for _, name := range []string{"yearly-2025.html", "diary-2025.html"} {
		path := filepath.Join(outDir, name)
		assert.Contains(t, out, path)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Christmas")
	}
}

func TestICSToStdout(t *testing.T) {
	out, err := run(t, "", "ics", "--year", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Good Friday")

	out, err = run(t, "", "ics", "--year", "2025", "--recurring")
	require.NoError(t, err)
	assert.Contains(t, out, "RRULE:")
}

func TestImportTSVFromStdin(t *testing.T) {
	out, err := run(t, "03-May\tMum\n24-December\tChristmas Eve\n", "import", "--title", "Family", "-")
	require.NoError(t, err)
	assert.Equal(t, "[Family]\n3 May Mum\n24 December Christmas Eve\n", out)
}

func TestImportICSFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.ics")
	body := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//t//EN\r\n" +
		"BEGIN:VEVENT\r\nUID:x\r\nDTSTART;VALUE=DATE:20250501\r\nSUMMARY:Labour Day\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	out, err := run(t, "", "import", path)
	require.NoError(t, err)
	assert.Equal(t, "[Imported]\n1 May Labour Day\n", out)
}

func TestRenderOutputs(t *testing.T) {
	outs, err := renderOutputs([]string{"yearly:pdf"}, nil, "png")
	require.NoError(t, err)
	assert.Equal(t, []pipeline.Output{{Kind: pipeline.Yearly, Format: pipeline.PDF}}, outs)

	outs, err = renderOutputs(nil, []string{"monthly", "halfyear"}, "png")
	require.NoError(t, err)
	assert.Equal(t, []pipeline.Output{
		{Kind: pipeline.Monthly, Format: pipeline.PNG},
		{Kind: pipeline.HalfYear, Format: pipeline.PNG},
	}, outs)

	_, err = renderOutputs(nil, []string{"weekly"}, "png")
	assert.Error(t, err)
	_, err = renderOutputs(nil, []string{"yearly"}, "gif")
	assert.Error(t, err)
}
