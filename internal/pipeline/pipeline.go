// Package pipeline loads event definitions and turns them into rendered
// calendar files.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"calgen/internal/capture"
	"calgen/internal/config"
	"calgen/internal/definition"
	"calgen/internal/ics"
	"calgen/internal/index"
	"calgen/internal/layout"
	appLog "calgen/internal/log"
	"calgen/internal/model"
	"calgen/internal/render"
)

// ErrUnknownGroup is returned by Select for a title no group carries.
var ErrUnknownGroup = errors.New("unknown group")

// Stdin is read when the definitions path is "-".
var Stdin io.Reader = os.Stdin

// LoadDefinitions reads and parses the definitions file at path.
func LoadDefinitions(path string, names model.NameTable) ([]definition.Group, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}

	groups, err := definition.ParseWithNames(string(data), names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return groups, nil
}

// Select keeps the groups whose titles appear in titles, compared
// case-insensitively, in their original order and with their original IDs.
// An empty selection keeps every group.
func Select(groups []definition.Group, titles []string) ([]definition.Group, error) {
	if len(titles) == 0 {
		return groups, nil
	}

	want := make(map[string]bool, len(titles))
	for _, t := range titles {
		want[strings.ToLower(strings.TrimSpace(t))] = false
	}
	var out []definition.Group
	for _, g := range groups {
		key := strings.ToLower(g.Title)
		if _, ok := want[key]; ok {
			want[key] = true
			out = append(out, g)
		}
	}
	for _, t := range titles {
		if !want[strings.ToLower(strings.TrimSpace(t))] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, t)
		}
	}
	return out, nil
}

// Capturer turns a rendered HTML document into PDF or PNG bytes.
type Capturer interface {
	Capture(ctx context.Context, html []byte, format capture.Format) ([]byte, error)
}

// Chromium captures through headless Chromium.
type Chromium struct {
	Options capture.Options
}

func (c Chromium) Capture(ctx context.Context, html []byte, format capture.Format) ([]byte, error) {
	return capture.Document(ctx, html, format, c.Options)
}

// Builder renders calendar documents for one configuration.
type Builder struct {
	renderer *render.Renderer
	layout   config.LayoutConfig
	capturer Capturer
	title    string

	// Concurrency bounds parallel renders in RenderYears. Each PDF or PNG
	// render holds a Chromium tab.
	Concurrency int
}

// NewBuilder prepares a Builder from cfg. A nil capturer uses Chromium with
// the configured capture options.
func NewBuilder(cfg *config.Config, capturer Capturer) (*Builder, error) {
	names, err := cfg.NameTable()
	if err != nil {
		return nil, err
	}
	r, err := render.New(render.Options{
		Title:    cfg.Title,
		Language: cfg.LanguageTag(),
		Names:    names,
	})
	if err != nil {
		return nil, err
	}
	if capturer == nil {
		capturer = Chromium{Options: capture.Options{
			Width:     cfg.Capture.Width,
			Height:    cfg.Capture.Height,
			Landscape: cfg.Capture.Landscape,
			ExecPath:  cfg.Capture.ExecPath,
			Timeout:   time.Duration(cfg.Capture.TimeoutSec) * time.Second,
		}}
	}
	return &Builder{
		renderer:    r,
		layout:      cfg.Layout,
		capturer:    capturer,
		title:       cfg.Title,
		Concurrency: 2,
	}, nil
}

// HTML renders the page style kind for year.
func (b *Builder) HTML(w io.Writer, groups []definition.Group, year int, kind Kind) error {
	idx := index.Build(groups, year)
	l := b.layout

	switch kind {
	case Yearly, HalfYear:
		opts := layout.YearlyOptions{MonthsPerPage: l.YearlyMonthsPerPage, Rows: l.YearlyRows}
		if kind == HalfYear {
			opts.MonthsPerPage = 6
		}
		return b.renderer.Yearly(w, year, groups, layout.Yearly(idx, opts))
	case Monthly:
		return b.renderer.Monthly(w, year, groups, layout.Monthly(idx))
	case Diary:
		opts := layout.DiaryOptions{
			CellsPerSection:  l.DiaryCellsPerSection,
			SectionsPerMonth: l.DiarySectionsPerMonth,
			SectionsPerPage:  l.DiarySectionsPerPage,
		}
		return b.renderer.Diary(w, year, groups, layout.Diary(idx, opts))
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Build produces the bytes of one output for year.
func (b *Builder) Build(ctx context.Context, groups []definition.Group, year int, out Output) ([]byte, error) {
	if out.Format == ICS {
		return ics.Export(index.Build(groups, year), ics.ExportOptions{Name: fmt.Sprintf("%s %d", b.title, year)})
	}

	var buf bytes.Buffer
	if err := b.HTML(&buf, groups, year, out.Kind); err != nil {
		return nil, err
	}

	switch out.Format {
	case HTML:
		return buf.Bytes(), nil
	case PDF, PNG:
		return b.capturer.Capture(ctx, buf.Bytes(), capture.Format(out.Format))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, out.Format)
}

// RenderYears writes every output for every year into dir and returns the
// written paths in year-major order. Renders run concurrently; the first
// failure cancels the rest.
func (b *Builder) RenderYears(ctx context.Context, groups []definition.Group, years []int, outputs []Output, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, len(years)*len(outputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, b.Concurrency))

	for yi, year := range years {
		for oi, out := range outputs {
			slot := yi*len(outputs) + oi
			g.Go(func() error {
				start := time.Now()
				data, err := b.Build(ctx, groups, year, out)
				if err != nil {
					return fmt.Errorf("%s %d: %w", out, year, err)
				}
				path := filepath.Join(dir, out.FileName(year))
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				appLog.Info("rendered", "output", out.String(), "year", year, "path", path,
					"bytes", len(data), "elapsed", time.Since(start).Round(time.Millisecond))
				paths[slot] = path
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// Years lists count consecutive years from start; a zero start means the
// year of now.
func Years(start, count int, now time.Time) []int {
	if start == 0 {
		start = now.Year()
	}
	count = max(1, count)
	out := make([]int, count)
	for i := range out {
		out[i] = start + i
	}
	return out
}
