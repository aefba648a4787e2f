package log

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelWarn)

	Info("hidden")
	Warn("shown", "year", 2025)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown year=2025")
}

func TestErrorIncludesErr(t *testing.T) {
	buf := capture(t)

	Error("render failed", errors.New("boom"), "kind", "diary")

	assert.Contains(t, buf.String(), `[ERROR] render failed err=boom kind=diary`)
}

func TestValuesWithSpacesAreQuoted(t *testing.T) {
	buf := capture(t)

	Info("group", "title", "Bank Holidays", "odd")

	assert.Contains(t, buf.String(), `title="Bank Holidays"`)
	assert.NotContains(t, buf.String(), "odd")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}
