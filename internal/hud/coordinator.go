// Package hud coordinates the volume overlay: one window per display, kept in
// sync with the display topology, shown with a short fade and hidden again
// after a fixed delay.
//
// Everything in this package runs on the UI queue. The platform supplies the
// windows, displays, text measurement, appearance and timers.
package hud

import (
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/euxx/volume-grid-sub001/internal/dispatch"
	"github.com/euxx/volume-grid-sub001/internal/model"
)

// Rect is a rectangle in global display coordinates.
type Rect struct {
	X, Y, Width, Height int
}

// Centered returns a w×h rectangle centered in r.
func (r Rect) Centered(w, h int) Rect {
	return Rect{
		X:      r.X + (r.Width-w)/2,
		Y:      r.Y + (r.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// Display is one connected screen.
type Display struct {
	ID     string
	Bounds Rect
}

// DisplaySource lists the connected displays.
type DisplaySource interface {
	Displays() []Display
}

// Window is one overlay window.
type Window interface {
	// Layout positions the window at frame, in global coordinates.
	Layout(frame Rect)
	Render(view View, style Style)
	// Present orders the window front.
	Present()
	Visible() bool
	SetOpacity(opacity float64)
	Opacity() float64
	// Hide orders the window off screen.
	Hide()
	Destroy()
}

// WindowFactory creates an overlay window bound to a display.
type WindowFactory interface {
	NewWindow(d Display) (Window, error)
}

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn on the UI queue after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Config holds the overlay timings and geometry.
type Config struct {
	AutoHide  time.Duration
	FadeIn    time.Duration
	FadeOut   time.Duration
	FrameRate time.Duration
	Opacity   float64
	MinWidth  int
	Height    int
}

// DefaultConfig returns the stock overlay settings.
func DefaultConfig() Config {
	return Config{
		AutoHide:  2 * time.Second,
		FadeIn:    150 * time.Millisecond,
		FadeOut:   350 * time.Millisecond,
		FrameRate: 16 * time.Millisecond,
		Opacity:   1,
		MinWidth:  320,
		Height:    96,
	}
}

// Deps are the platform services a Coordinator uses.
type Deps struct {
	UI         dispatch.Queue
	Displays   DisplaySource
	Windows    WindowFactory
	Measurer   Measurer
	Appearance Appearance
	Scheduler  Scheduler
	Logger     *slog.Logger
}

type overlay struct {
	display Display
	window  Window
	fade    Timer
}

// Coordinator owns the overlay windows.
type Coordinator struct {
	deps   Deps
	cfg    Config
	logger *slog.Logger

	windows   map[string]*overlay
	hideTimer Timer
}

// NewCoordinator creates a coordinator with no windows. Call SyncWithDisplays
// or Show to create them.
func NewCoordinator(deps Deps, cfg Config) *Coordinator {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.UI == nil {
		deps.UI = dispatch.Inline{}
	}
	if deps.Appearance == nil {
		deps.Appearance = StaticAppearance(false)
	}
	return &Coordinator{
		deps:    deps,
		cfg:     normalize(cfg),
		logger:  deps.Logger,
		windows: make(map[string]*overlay),
	}
}

func normalize(cfg Config) Config {
	def := DefaultConfig()
	if cfg.AutoHide <= 0 {
		cfg.AutoHide = def.AutoHide
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = def.FrameRate
	}
	if cfg.Opacity <= 0 || cfg.Opacity > 1 {
		cfg.Opacity = def.Opacity
	}
	if cfg.MinWidth <= 0 {
		cfg.MinWidth = def.MinWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	return cfg
}

// SetConfig replaces the overlay settings. The next Show uses them.
func (c *Coordinator) SetConfig(cfg Config) {
	c.cfg = normalize(cfg)
}

// Config returns the active settings.
func (c *Coordinator) Config() Config {
	return c.cfg
}

// DisplaysChanged is the hook for display reconfiguration callbacks, which
// may arrive on any goroutine.
func (c *Coordinator) DisplaysChanged() {
	c.deps.UI.Post(c.SyncWithDisplays)
}

// SyncWithDisplays creates windows for new displays and destroys windows of
// displays that went away. Windows of remaining displays are kept as they are.
func (c *Coordinator) SyncWithDisplays() {
	displays := c.deps.Displays.Displays()
	seen := make(map[string]bool, len(displays))

	for _, d := range displays {
		seen[d.ID] = true
		if o, ok := c.windows[d.ID]; ok {
			o.display = d
			continue
		}

		win, err := c.deps.Windows.NewWindow(d)
		if err != nil {
			c.logger.Warn("failed to create overlay window", "display", d.ID, "error", err)
			continue
		}
		c.windows[d.ID] = &overlay{display: d, window: win}
		c.logger.Debug("overlay window created", "display", d.ID)
	}

	for id, o := range c.windows {
		if seen[id] {
			continue
		}
		c.stopFade(o)
		o.window.Hide()
		o.window.Destroy()
		delete(c.windows, id)
		c.logger.Debug("overlay window destroyed", "display", id)
	}
}

// Show renders ctx on every display and restarts the auto-hide countdown.
func (c *Coordinator) Show(ctx model.HUDContext) {
	view := BuildView(ctx)
	style := StyleFor(c.deps.Appearance.Dark())
	width := c.cfg.MinWidth
	if c.deps.Measurer != nil {
		width = Width(c.deps.Measurer, view.DeviceName, view.Unsupported, c.cfg.MinWidth)
	}

	c.SyncWithDisplays()

	for _, id := range c.displayIDs() {
		o := c.windows[id]
		o.window.Layout(o.display.Bounds.Centered(width, c.cfg.Height))
		o.window.Render(view, style)

		c.stopFade(o)
		if o.window.Visible() {
			o.window.SetOpacity(c.cfg.Opacity)
			o.window.Present()
			continue
		}
		o.window.SetOpacity(0)
		o.window.Present()
		c.fade(o, c.cfg.Opacity, c.cfg.FadeIn, nil)
	}

	c.scheduleHide(view.ID)
}

// Hide fades every window out immediately.
func (c *Coordinator) Hide() {
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
	}
	c.hideAll()
}

// Close destroys every window.
func (c *Coordinator) Close() {
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
	}
	for id, o := range c.windows {
		c.stopFade(o)
		o.window.Destroy()
		delete(c.windows, id)
	}
}

// Windows returns the tracked windows keyed by display ID.
func (c *Coordinator) Windows() map[string]Window {
	out := make(map[string]Window, len(c.windows))
	for id, o := range c.windows {
		out[id] = o.window
	}
	return out
}

func (c *Coordinator) displayIDs() []string {
	return slices.Sorted(maps.Keys(c.windows))
}

func (c *Coordinator) scheduleHide(id string) {
	if c.hideTimer != nil {
		c.hideTimer.Stop()
	}
	c.hideTimer = c.deps.Scheduler.AfterFunc(c.cfg.AutoHide, func() {
		c.hideTimer = nil
		c.logger.Debug("hud auto-hide", "id", id)
		c.hideAll()
	})
}

func (c *Coordinator) hideAll() {
	for _, id := range c.displayIDs() {
		o := c.windows[id]
		if !o.window.Visible() {
			continue
		}
		c.stopFade(o)
		c.fade(o, 0, c.cfg.FadeOut, o.window.Hide)
	}
}

func (c *Coordinator) stopFade(o *overlay) {
	if o.fade != nil {
		o.fade.Stop()
		o.fade = nil
	}
}

// fade steps the window opacity linearly to target over d, then calls done.
func (c *Coordinator) fade(o *overlay, target float64, d time.Duration, done func()) {
	from := o.window.Opacity()
	steps := int(d / c.cfg.FrameRate)
	if steps < 1 {
		o.window.SetOpacity(target)
		if done != nil {
			done()
		}
		return
	}

	step := 0
	var tick func()
	tick = func() {
		step++
		if step >= steps {
			o.fade = nil
			o.window.SetOpacity(target)
			if done != nil {
				done()
			}
			return
		}
		o.window.SetOpacity(from + (target-from)*float64(step)/float64(steps))
		o.fade = c.deps.Scheduler.AfterFunc(c.cfg.FrameRate, tick)
	}
	o.fade = c.deps.Scheduler.AfterFunc(c.cfg.FrameRate, tick)
}
