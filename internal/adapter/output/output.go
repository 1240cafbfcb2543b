// Package output provides output formatters for volume status and device
// lists.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/euxx/volume-grid-sub001/internal/model"
)

// Formatter formats volume state for output.
type Formatter interface {
	// FormatStatus writes the state of the default output device.
	FormatStatus(w io.Writer, s Status) error
	// FormatDevices writes the output devices; current is marked where the
	// format allows it.
	FormatDevices(w io.Writer, devices []model.AudioDevice, current model.DeviceID) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatDmenu FormatType = "dmenu"
	FormatIDs   FormatType = "ids"
)

// ValidFormats returns all format names.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatDmenu, FormatIDs}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (FormatType, error) {
	f := FormatType(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidFormats() {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q, must be one of: %v", s, ValidFormats())
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter()
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template  string // Custom template for plain status output
	ShowBar   bool   // Draw the segment bar in plain output
	ShowTime  bool   // Show relative time of the reading
	Separator string // Field separator for dmenu format
	Compact   bool   // Single-line JSON
}

// DefaultFormatterOptions returns sensible defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowBar:   true,
		Separator: " | ",
	}
}
