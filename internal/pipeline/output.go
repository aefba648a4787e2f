package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a page style.
type Kind string

const (
	Yearly   Kind = "yearly"
	HalfYear Kind = "halfyear"
	Monthly  Kind = "monthly"
	Diary    Kind = "diary"
)

// Kinds lists every page style.
func Kinds() []Kind {
	return []Kind{Yearly, HalfYear, Monthly, Diary}
}

// Format is the file type an output is written as.
type Format string

const (
	HTML Format = "html"
	PDF  Format = "pdf"
	PNG  Format = "png"
	ICS  Format = "ics"
)

var (
	ErrUnknownKind   = errors.New("unknown page kind")
	ErrUnknownFormat = errors.New("unknown output format")
)

// ParseKind accepts a page style name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ParseFormat accepts html, pdf, png or ics, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case HTML, PDF, PNG, ICS:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Output is one file produced per year.
type Output struct {
	Kind   Kind
	Format Format
}

// ParseOutput reads "kind:format"; a bare kind means HTML. A bare "ics"
// exports the occurrence list.
func ParseOutput(s string) (Output, error) {
	kindText, formatText, ok := strings.Cut(s, ":")
	if !ok {
		if f, err := ParseFormat(kindText); err == nil && f == ICS {
			return Output{Kind: Yearly, Format: ICS}, nil
		}
		formatText = string(HTML)
	}
	kind, err := ParseKind(kindText)
	if err != nil {
		return Output{}, err
	}
	format, err := ParseFormat(formatText)
	if err != nil {
		return Output{}, err
	}
	return Output{Kind: kind, Format: format}, nil
}

// ParseOutputs parses every entry of list.
func ParseOutputs(list []string) ([]Output, error) {
	out := make([]Output, 0, len(list))
	for _, s := range list {
		o, err := ParseOutput(s)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// FileName is "<kind>-<year>.<format>", or "events-<year>.ics" for exports.
func (o Output) FileName(year int) string {
	if o.Format == ICS {
		return fmt.Sprintf("events-%d.ics", year)
	}
	return fmt.Sprintf("%s-%d.%s", o.Kind, year, o.Format)
}

func (o Output) String() string {
	return string(o.Kind) + ":" + string(o.Format)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case PNG:
		return "image/png"
	case ICS:
		return "text/calendar; charset=utf-8"
	default:
		return "text/html; charset=utf-8"
	}
}
