package display

import (
	"log/slog"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/euxx/volume-grid-sub001/internal/hud"
)

// Manager owns the GTK side of the HUD: it creates overlay windows for the
// coordinator and exposes the monitors, the text measurer and the main loop.
type Manager struct {
	app      *gtk.Application
	logger   *slog.Logger
	display  *gdk.Display
	monitors *MonitorSource
	measurer *PangoMeasurer
}

var _ hud.WindowFactory = (*Manager)(nil)

// NewManager creates a new display manager.
func NewManager(app *gtk.Application, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{app: app, logger: logger}
}

// Start binds the manager to the default display. Call it from the
// application's activate handler.
func (m *Manager) Start() error {
	m.display = gdk.DisplayGetDefault()
	if m.display == nil {
		return &DisplayError{Message: "no display available"}
	}

	m.monitors = NewMonitorSource(m.display, m.logger)
	m.measurer = NewPangoMeasurer()

	m.logger.Info("display manager started", "monitors", len(m.monitors.Displays()))
	return nil
}

// Display returns the bound GDK display.
func (m *Manager) Display() *gdk.Display {
	return m.display
}

// Monitors returns the monitor source. Valid after Start.
func (m *Manager) Monitors() *MonitorSource {
	return m.monitors
}

// Measurer returns the text measurer. Valid after Start.
func (m *Manager) Measurer() *PangoMeasurer {
	return m.measurer
}

// HUDDeps assembles the coordinator dependencies.
func (m *Manager) HUDDeps(appearance hud.Appearance) hud.Deps {
	return hud.Deps{
		UI:         MainLoop{},
		Displays:   m.monitors,
		Windows:    m,
		Measurer:   m.measurer,
		Appearance: appearance,
		Scheduler:  MainLoop{},
		Logger:     m.logger,
	}
}

// NewWindow implements hud.WindowFactory.
func (m *Manager) NewWindow(d hud.Display) (hud.Window, error) {
	if m.display == nil {
		return nil, &DisplayError{Message: "display manager not started"}
	}
	monitor := m.monitors.Monitor(d.ID)
	if monitor == nil {
		return nil, &DisplayError{Message: "monitor " + d.ID + " went away"}
	}
	return newOverlayWindow(m.app, d, monitor, m.logger), nil
}

// DisplayError represents a display-related error.
type DisplayError struct {
	Message string
	Cause   error
}

func (e *DisplayError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DisplayError) Unwrap() error {
	return e.Cause
}
