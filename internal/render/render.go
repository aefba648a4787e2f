// Package render turns layout grids into standalone HTML documents.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/text/language"

	"calgen/internal/definition"
	"calgen/internal/layout"
	"calgen/internal/model"
)

//go:embed templates
var templateFS embed.FS

// ShadedBackground is the class put on weekend cells.
const ShadedBackground = "shadedBackground"

// Options configures document metadata and display names.
type Options struct {
	Title    string
	Language language.Tag
	Names    model.NameTable
}

// Renderer executes the embedded page templates.
type Renderer struct {
	opts Options
	tmpl *template.Template
	css  template.CSS
}

// New parses the embedded templates.
func New(opts Options) (*Renderer, error) {
	if opts.Title == "" {
		opts.Title = "Calendar"
	}
	if opts.Language == language.Und {
		opts.Language = language.English
	}
	if opts.Names == (model.NameTable{}) {
		opts.Names = model.DefaultNames()
	}

	tmpl, err := template.New("calendar").
		Funcs(sprig.FuncMap()).
		Funcs(funcs(opts.Names)).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}

	css, err := templateFS.ReadFile("templates/calendar.css")
	if err != nil {
		return nil, fmt.Errorf("render: read stylesheet: %w", err)
	}

	return &Renderer{opts: opts, tmpl: tmpl, css: template.CSS(css)}, nil
}

func funcs(names model.NameTable) template.FuncMap {
	return template.FuncMap{
		"monthName":   func(m time.Month) string { return names.Month(m) },
		"weekdayName": func(w model.Weekday) string { return names.Weekday(w) },
		"background":  Background,
		"shortName":   shortName,
	}
}

// Background maps the weekend flag of a cell to its CSS class.
func Background(weekend bool) string {
	if weekend {
		return ShadedBackground
	}
	return ""
}

// shortName keeps the first n runes of s.
func shortName(n int, s string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// groupStyle is one rule of the generated style block.
type groupStyle struct {
	Class template.CSS
	Style template.CSS
}

// document is the data shared by every page template.
type document struct {
	Title  string
	Lang   string
	Year   int
	CSS    template.CSS
	Styles []groupStyle
}

func (r *Renderer) document(year int, groups []definition.Group) document {
	return document{
		Title:  fmt.Sprintf("%s %d", r.opts.Title, year),
		Lang:   r.opts.Language.String(),
		Year:   year,
		CSS:    r.css,
		Styles: styles(groups),
	}
}

// styleEscaper keeps a group style inside the <style> element. The CSS
// escape for '<' stands for the same character to a CSS parser.
var styleEscaper = strings.NewReplacer("<", `\3c `)

// styles passes group styles through, keyed by group class. Only '<' is
// rewritten, so "</style>" cannot end the style element early.
func styles(groups []definition.Group) []groupStyle {
	var out []groupStyle
	for _, g := range groups {
		if !g.HasStyle {
			continue
		}
		out = append(out, groupStyle{
			Class: template.CSS(g.ID.CSSClass()),
			Style: template.CSS(styleEscaper.Replace(g.Style)),
		})
	}
	return out
}

type yearlyView struct {
	document
	Heading       string
	BodyClass     string
	Rows          int
	WeekdayTitles []model.Weekday
	Pages         []layout.YearlyPage
}

// Yearly writes the overview. A single page renders as a full year, more
// pages as half-years.
func (r *Renderer) Yearly(w io.Writer, year int, groups []definition.Group, pages []layout.YearlyPage) error {
	rows := layout.MinYearlyRows
	if len(pages) > 0 && len(pages[0].Months) > 0 {
		rows = len(pages[0].Months[0].Cells)
	}
	view := yearlyView{
		document:      r.document(year, groups),
		Heading:       "Year",
		BodyClass:     "fullyear",
		Rows:          rows,
		WeekdayTitles: layout.WeekdayTitles(rows),
		Pages:         pages,
	}
	if len(pages) > 1 {
		view.Heading = "Half-Year"
		view.BodyClass = "halfyear"
	}
	return r.execute(w, "yearly.html", view)
}

type monthlyView struct {
	document
	WeekdayTitles []model.Weekday
	Grids         []layout.MonthGrid
}

// Monthly writes one page per month grid.
func (r *Renderer) Monthly(w io.Writer, year int, groups []definition.Group, grids []layout.MonthGrid) error {
	view := monthlyView{
		document:      r.document(year, groups),
		WeekdayTitles: layout.WeekdayTitles(0)[:model.DaysPerWeek],
		Grids:         grids,
	}
	return r.execute(w, "monthly.html", view)
}

type diaryView struct {
	document
	Sheets []layout.DiarySheet
}

// Diary writes one page per diary sheet.
func (r *Renderer) Diary(w io.Writer, year int, groups []definition.Group, sheets []layout.DiarySheet) error {
	view := diaryView{
		document: r.document(year, groups),
		Sheets:   sheets,
	}
	return r.execute(w, "diary.html", view)
}

// execute renders into a buffer first so a failing template never leaves
// half a document in w.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render: %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
