package display

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/euxx/volume-grid-sub001/internal/hud"
)

// MonitorSource lists the GDK monitors as HUD displays.
type MonitorSource struct {
	display *gdk.Display
	logger  *slog.Logger
}

var _ hud.DisplaySource = (*MonitorSource)(nil)

// NewMonitorSource creates a source for display.
func NewMonitorSource(display *gdk.Display, logger *slog.Logger) *MonitorSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitorSource{display: display, logger: logger}
}

// Displays implements hud.DisplaySource.
func (s *MonitorSource) Displays() []hud.Display {
	monitors := s.display.Monitors()
	if monitors == nil {
		s.logger.Warn("no monitors list available")
		return nil
	}

	n := monitors.NItems()
	out := make([]hud.Display, 0, n)
	for i := range n {
		m := wrapMonitor(monitors.Item(i))
		if m == nil {
			continue
		}
		out = append(out, hud.Display{
			ID:     monitorID(m, i),
			Bounds: monitorBounds(m),
		})
	}
	return out
}

// Monitor returns the GDK monitor for a display ID, or nil.
func (s *MonitorSource) Monitor(id string) *gdk.Monitor {
	monitors := s.display.Monitors()
	if monitors == nil {
		return nil
	}
	for i := range monitors.NItems() {
		m := wrapMonitor(monitors.Item(i))
		if m != nil && monitorID(m, i) == id {
			return m
		}
	}
	return nil
}

// OnChange calls fn whenever monitors are added or removed.
func (s *MonitorSource) OnChange(fn func()) {
	monitors := s.display.Monitors()
	if monitors == nil {
		return
	}
	monitors.ConnectItemsChanged(func(position, removed, added uint) {
		s.logger.Debug("monitors changed", "removed", removed, "added", added)
		fn()
	})
}

// monitorID prefers the connector name, which survives reordering.
func monitorID(m *gdk.Monitor, index uint) string {
	if c := m.Connector(); c != "" {
		return c
	}
	return fmt.Sprintf("monitor-%d", index)
}

func monitorBounds(m *gdk.Monitor) hud.Rect {
	g := m.Geometry()
	return hud.Rect{X: g.X(), Y: g.Y(), Width: g.Width(), Height: g.Height()}
}

// wrapMonitor wraps a coreglib.Object as a gdk.Monitor.
// This is necessary because gotk4 doesn't expose the wrapMonitor function.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	// gdk.Monitor embeds a *coreglib.Object, matching this layout.
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
