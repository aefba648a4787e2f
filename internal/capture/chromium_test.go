package capture

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.normalized()
	assert.Equal(t, DefaultWidth, o.Width)
	assert.Equal(t, DefaultHeight, o.Height)
	assert.Equal(t, DefaultTimeoutSec*time.Second, o.Timeout)

	o = Options{Width: 800, Height: 600, Timeout: time.Second}.normalized()
	assert.Equal(t, 800, o.Width)
	assert.Equal(t, time.Second, o.Timeout)
}

func TestDocumentRejectsBadInput(t *testing.T) {
	_, err := Document(context.Background(), nil, PDF, Options{})
	assert.Error(t, err)

	_, err = Document(context.Background(), []byte("<p>x</p>"), Format("svg"), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func chromium(t *testing.T) string {
	t.Helper()
	if os.Getenv("CALGEN_CHROMIUM_TESTS") == "" {
		t.Skip("set CALGEN_CHROMIUM_TESTS=1 to run against a local Chromium")
	}
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no Chromium binary on PATH")
	return ""
}

func TestDocumentPDFAndPNG(t *testing.T) {
	path := chromium(t)
	html := []byte(`<!DOCTYPE html><html><body><h1>Hello</h1></body></html>`)
	opts := Options{ExecPath: path, Width: 400, Height: 300}

	pdf, err := Document(context.Background(), html, PDF, opts)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	png, err := Document(context.Background(), html, PNG, opts)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
