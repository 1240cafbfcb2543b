package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/euxx/volume-grid-sub001/internal/model"
)

// DmenuFormatter formats devices for dmenu/rofi/fuzzel pickers.
type DmenuFormatter struct {
	opts FormatterOptions
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	if opts.Separator == "" {
		opts.Separator = " | "
	}
	return &DmenuFormatter{opts: opts}
}

// FormatStatus writes the status as a single picker line.
func (f *DmenuFormatter) FormatStatus(w io.Writer, s Status) error {
	level := fmt.Sprintf("%d%%", s.Percentage)
	switch {
	case !s.Supported:
		level = s.Segments
	case s.Muted:
		level = "muted"
	}
	_, err := fmt.Fprintln(w, strings.Join([]string{fmt.Sprint(s.Device.ID), s.Device.Name, level}, f.opts.Separator))
	return err
}

// FormatDevices writes one "<id> | <name>" line per device. The picked line
// can be fed back by cutting the first field.
func (f *DmenuFormatter) FormatDevices(w io.Writer, devices []model.AudioDevice, current model.DeviceID) error {
	for _, d := range devices {
		name := sanitizeName(d.Name)
		if d.ID == current {
			name += " (default)"
		}
		if _, err := fmt.Fprintln(w, fmt.Sprint(d.ID)+f.opts.Separator+name); err != nil {
			return err
		}
	}
	return nil
}

// sanitizeName keeps a device name on one picker line.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", "")
	return strings.Join(strings.Fields(name), " ")
}
