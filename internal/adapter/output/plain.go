package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/euxx/volume-grid-sub001/internal/model"
)

// PlainFormatter formats volume state as human readable text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// FormatStatus writes one status line, e.g.
//
//	MacBook Pro Speakers  ████████▌░░░░░░░  8+2/4 / 16  53%
func (f *PlainFormatter) FormatStatus(w io.Writer, s Status) error {
	if f.template != nil {
		if err := f.template.Execute(w, s); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}

	parts := []string{deviceLabel(s.Device)}
	if f.opts.ShowBar {
		parts = append(parts, s.Bar())
	}
	parts = append(parts, s.Segments)

	switch {
	case !s.Supported:
	case s.Muted:
		parts = append(parts, "muted")
	default:
		parts = append(parts, fmt.Sprintf("%d%%", s.Percentage))
	}

	if f.opts.ShowTime && !s.At.IsZero() {
		parts = append(parts, "("+relativeTime(s.At)+")")
	}

	_, err := fmt.Fprintln(w, strings.Join(parts, "  "))
	return err
}

// FormatDevices writes one device per line, the default marked with "*".
func (f *PlainFormatter) FormatDevices(w io.Writer, devices []model.AudioDevice, current model.DeviceID) error {
	for _, d := range devices {
		marker := " "
		if d.ID == current {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %-6d %s\n", marker, d.ID, d.Name); err != nil {
			return err
		}
	}
	return nil
}

func deviceLabel(d model.AudioDevice) string {
	switch {
	case d.ID == model.NoDevice:
		return "(no output device)"
	case d.Name == "":
		return fmt.Sprintf("device %d", d.ID)
	default:
		return d.Name
	}
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"reltime": relativeTime,
		"pad": func(width int, s string) string {
			if len(s) >= width {
				return s
			}
			return s + strings.Repeat(" ", width-len(s))
		},
	}
}

// relativeTime returns a human-readable relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.Time(t)
}
