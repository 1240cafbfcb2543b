package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/euxx/volume-grid-sub001/internal/model"
)

// YAMLFormatter formats volume state as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// FormatStatus writes the status as a YAML document.
func (f *YAMLFormatter) FormatStatus(w io.Writer, s Status) error {
	return encodeYAML(w, s)
}

// FormatDevices writes the devices as a YAML sequence.
func (f *YAMLFormatter) FormatDevices(w io.Writer, devices []model.AudioDevice, current model.DeviceID) error {
	return encodeYAML(w, deviceEntries(devices, current))
}

func encodeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
