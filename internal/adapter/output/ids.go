package output

import (
	"fmt"
	"io"

	"github.com/euxx/volume-grid-sub001/internal/model"
)

// IDsFormatter outputs just the device IDs, one per line.
// Useful for piping to other commands.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// FormatStatus writes the default device ID.
func (f *IDsFormatter) FormatStatus(w io.Writer, s Status) error {
	_, err := fmt.Fprintln(w, s.Device.ID)
	return err
}

// FormatDevices writes device IDs to the writer, one per line.
func (f *IDsFormatter) FormatDevices(w io.Writer, devices []model.AudioDevice, _ model.DeviceID) error {
	for _, d := range devices {
		if _, err := fmt.Fprintln(w, d.ID); err != nil {
			return err
		}
	}
	return nil
}
