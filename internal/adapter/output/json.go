package output

import (
	"encoding/json"
	"io"

	"github.com/euxx/volume-grid-sub001/internal/model"
)

// JSONFormatter formats volume state as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

func (f *JSONFormatter) encoder(w io.Writer) *json.Encoder {
	encoder := json.NewEncoder(w)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder
}

// FormatStatus writes the status as a JSON object.
func (f *JSONFormatter) FormatStatus(w io.Writer, s Status) error {
	return f.encoder(w).Encode(s)
}

// FormatDevices writes the devices as a JSON array.
func (f *JSONFormatter) FormatDevices(w io.Writer, devices []model.AudioDevice, current model.DeviceID) error {
	return f.encoder(w).Encode(deviceEntries(devices, current))
}

// deviceEntry is a device with its default flag, for structured formats.
type deviceEntry struct {
	ID      model.DeviceID `json:"id" yaml:"id"`
	Name    string         `json:"name" yaml:"name"`
	Default bool           `json:"default" yaml:"default"`
}

func deviceEntries(devices []model.AudioDevice, current model.DeviceID) []deviceEntry {
	entries := make([]deviceEntry, 0, len(devices))
	for _, d := range devices {
		entries = append(entries, deviceEntry{ID: d.ID, Name: d.Name, Default: d.ID == current})
	}
	return entries
}
