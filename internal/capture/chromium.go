package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Default capture parameters, an A4 sheet in landscape at 150 dpi.
const (
	DefaultWidth      = 1754
	DefaultHeight     = 1240
	DefaultTimeoutSec = 30
)

// Format is the output produced from a rendered HTML document.
type Format string

const (
	PDF Format = "pdf"
	PNG Format = "png"
)

// ErrUnsupportedFormat is returned for formats other than PDF and PNG.
var ErrUnsupportedFormat = errors.New("capture: unsupported format")

// Options defines parameters for a Chromium-based capture.
type Options struct {
	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Landscape selects the paper orientation for PDF output.
	Landscape bool

	// ExecPath overrides the Chromium binary; empty lets chromedp look it up.
	ExecPath string

	// Timeout bounds the entire capture operation. If zero, a sane default
	// (DefaultTimeoutSec) is used.
	Timeout time.Duration
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return o
}

// Document loads html into a headless Chromium tab and returns it as a PDF
// or a full-page PNG screenshot.
//
// The document is injected with Page.setDocumentContent, so it must be
// self-contained: the stylesheet is expected inline.
func Document(parentCtx context.Context, html []byte, format Format, opts Options) ([]byte, error) {
	if len(html) == 0 {
		return nil, errors.New("capture: document is empty")
	}
	if format != PDF && format != PNG {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	opts = opts.normalized()

	allocCtx := parentCtx
	if opts.ExecPath != "" {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.ExecPath(opts.ExecPath))
		var allocCancel context.CancelFunc
		allocCtx, allocCancel = chromedp.NewExecAllocator(parentCtx, allocOpts...)
		defer allocCancel()
	}

	// Create a new chromedp context.
	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	// Apply timeout to the entire capture sequence.
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var out []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate("about:blank"),
		setContent(string(html)),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	switch format {
	case PDF:
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(opts.Landscape).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			out = data
			return nil
		}))
	case PNG:
		tasks = append(tasks, chromedp.FullScreenshot(&out, 100))
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	return out, nil
}

func setContent(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
}
