package display

import (
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/euxx/volume-grid-sub001/internal/hud"
)

// PangoMeasurer measures text with the fonts the theme gives the HUD labels.
type PangoMeasurer struct {
	box    *gtk.Box
	labels map[hud.TextRole]*gtk.Label
}

var _ hud.Measurer = (*PangoMeasurer)(nil)

// NewPangoMeasurer creates a measurer. It needs an initialized GTK display.
// The labels sit in a detached container carrying the same classes as the
// window content so theme selectors apply to them.
func NewPangoMeasurer() *PangoMeasurer {
	box := gtk.NewBox(gtk.OrientationHorizontal, 0)
	box.AddCSSClass("volume-hud")

	name := gtk.NewLabel("")
	name.AddCSSClass("hud-device")
	box.Append(name)

	status := gtk.NewLabel("")
	status.AddCSSClass("hud-status")
	box.Append(status)

	return &PangoMeasurer{
		box: box,
		labels: map[hud.TextRole]*gtk.Label{
			hud.TextDeviceName: name,
			hud.TextStatus:     status,
		},
	}
}

// TextWidth implements hud.Measurer.
func (m *PangoMeasurer) TextWidth(text string, role hud.TextRole) int {
	label, ok := m.labels[role]
	if !ok {
		label = m.labels[hud.TextStatus]
	}
	width, _ := label.CreatePangoLayout(text).PixelSize()
	return width
}
