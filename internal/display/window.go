package display

import (
	"log/slog"
	"math"

	"github.com/diamondburned/gotk4/pkg/cairo"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/euxx/volume-grid-sub001/internal/hud"
)

// Segment bar geometry in pixels.
const (
	segmentGap    = 3
	segmentHeight = 8
	segmentRadius = 2
)

// overlayWindow is one HUD window bound to a monitor.
type overlayWindow struct {
	display  hud.Display
	monitor  *gdk.Monitor
	layered  bool
	logger   *slog.Logger
	window   *gtk.Window
	frame    *gtk.Overlay
	content  *gtk.Box
	icon     *gtk.Image
	nameLbl  *gtk.Label
	status   *gtk.Label
	bar      *gtk.DrawingArea
	backdrop *gtk.DrawingArea

	// State for the draw functions
	style     hud.Style
	fills     [hud.SegmentCount]float64
	devClass  string
	destroyed bool
}

var _ hud.Window = (*overlayWindow)(nil)

func newOverlayWindow(app *gtk.Application, d hud.Display, monitor *gdk.Monitor, logger *slog.Logger) *overlayWindow {
	w := &overlayWindow{
		display: d,
		monitor: monitor,
		layered: layerShellSupported(),
		logger:  logger,
		style:   hud.StyleFor(false),
	}

	w.window = gtk.NewWindow()
	w.window.SetApplication(app)
	w.window.SetDecorated(false)
	w.window.SetResizable(false)
	w.window.SetCanFocus(false)
	w.window.AddCSSClass("volume-hud-window")

	if w.layered {
		initLayer(w.window, monitor)
	} else {
		// A transparent fullscreen window on its own monitor, with the HUD
		// centered inside and pointer input disabled.
		w.window.AddCSSClass("volume-hud-fullscreen")
		w.window.SetCanTarget(false)
	}

	w.buildUI()
	return w
}

// buildUI constructs the widget tree: a backdrop drawn with cairo under a
// row holding the icon, the device name and the status, above the bar.
func (w *overlayWindow) buildUI() {
	w.backdrop = gtk.NewDrawingArea()
	w.backdrop.SetDrawFunc(w.drawBackdrop)

	w.content = gtk.NewBox(gtk.OrientationVertical, 10)
	w.content.AddCSSClass("volume-hud")
	w.content.SetMarginTop(14)
	w.content.SetMarginBottom(14)
	w.content.SetMarginStart(hud.HorizontalMargin)
	w.content.SetMarginEnd(hud.HorizontalMargin)
	w.content.SetVAlign(gtk.AlignCenter)

	row := gtk.NewBox(gtk.OrientationHorizontal, hud.TextGap)
	row.AddCSSClass("hud-row")

	w.icon = gtk.NewImage()
	w.icon.AddCSSClass("hud-icon")
	row.Append(w.icon)

	w.nameLbl = gtk.NewLabel("")
	w.nameLbl.AddCSSClass("hud-device")
	w.nameLbl.SetXAlign(0)
	w.nameLbl.SetHExpand(true)
	w.nameLbl.SetEllipsize(3) // PANGO_ELLIPSIZE_END
	row.Append(w.nameLbl)

	w.status = gtk.NewLabel("")
	w.status.AddCSSClass("hud-status")
	w.status.SetXAlign(1)
	row.Append(w.status)

	w.bar = gtk.NewDrawingArea()
	w.bar.AddCSSClass("hud-segments")
	w.bar.SetContentHeight(segmentHeight)
	w.bar.SetHExpand(true)
	w.bar.SetDrawFunc(w.drawSegments)

	w.content.Append(row)
	w.content.Append(w.bar)

	w.frame = gtk.NewOverlay()
	w.frame.SetChild(w.backdrop)
	w.frame.AddOverlay(w.content)
	if !w.layered {
		w.frame.SetHAlign(gtk.AlignCenter)
		w.frame.SetVAlign(gtk.AlignCenter)
	}
	w.window.SetChild(w.frame)
}

// Layout sizes the HUD. Layered windows are positioned through margins
// relative to their monitor; fullscreen windows center the HUD on theirs,
// matching the centered frame the coordinator computes.
func (w *overlayWindow) Layout(frame hud.Rect) {
	if !w.layered {
		w.frame.SetSizeRequest(frame.Width, frame.Height)
		return
	}
	w.window.SetDefaultSize(frame.Width, frame.Height)
	w.window.SetSizeRequest(frame.Width, frame.Height)
	placeLayer(w.window, frame.Y-w.display.Bounds.Y, frame.X-w.display.Bounds.X)
}

// Render updates the widgets for view and queues a redraw.
func (w *overlayWindow) Render(view hud.View, style hud.Style) {
	w.style = style
	w.fills = view.Fills

	w.icon.SetFromIconName(view.Band.IconName())
	w.icon.SetPixelSize(view.Band.IconSize())
	w.nameLbl.SetText(view.DeviceName)
	w.nameLbl.SetVisible(view.DeviceName != "")
	w.status.SetText(view.StatusText)
	w.bar.SetVisible(!view.Unsupported)

	for _, class := range stateClasses {
		w.content.RemoveCSSClass(class)
	}
	for _, class := range viewClasses(view, style) {
		w.content.AddCSSClass(class)
	}
	if w.devClass != "" {
		w.content.RemoveCSSClass(w.devClass)
	}
	w.devClass = deviceClass(view.DeviceName)
	if w.devClass != "" {
		w.content.AddCSSClass(w.devClass)
	}

	w.backdrop.QueueDraw()
	w.bar.QueueDraw()
}

func (w *overlayWindow) Present() {
	if !w.layered && w.monitor != nil {
		w.window.FullscreenOnMonitor(w.monitor)
	}
	w.window.Present()
}

func (w *overlayWindow) Visible() bool {
	return !w.destroyed && w.window.IsVisible()
}

func (w *overlayWindow) SetOpacity(opacity float64) {
	w.window.SetOpacity(opacity)
}

func (w *overlayWindow) Opacity() float64 {
	return w.window.Opacity()
}

func (w *overlayWindow) Hide() {
	if w.destroyed {
		return
	}
	w.window.SetVisible(false)
}

func (w *overlayWindow) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.window.Destroy()
	w.logger.Debug("overlay window closed", "display", w.display.ID)
}

func (w *overlayWindow) drawBackdrop(_ *gtk.DrawingArea, cr *cairo.Context, width, height int) {
	bg := w.style.Background
	roundedRect(cr, 0, 0, float64(width), float64(height), w.style.CornerRadius)
	cr.SetSourceRGBA(bg.R, bg.G, bg.B, bg.A)
	cr.Fill()
}

// drawSegments paints the bar: each block is an empty track with its quarter
// fill drawn from the left.
func (w *overlayWindow) drawSegments(_ *gtk.DrawingArea, cr *cairo.Context, width, height int) {
	n := float64(hud.SegmentCount)
	segW := (float64(width) - segmentGap*(n-1)) / n
	if segW <= 0 {
		return
	}
	h := math.Min(float64(height), segmentHeight)
	y := (float64(height) - h) / 2

	empty, fill := w.style.SegmentEmpty, w.style.SegmentFill
	for i, f := range w.fills {
		x := float64(i) * (segW + segmentGap)

		roundedRect(cr, x, y, segW, h, segmentRadius)
		cr.SetSourceRGBA(empty.R, empty.G, empty.B, empty.A)
		cr.Fill()

		if f <= 0 {
			continue
		}
		roundedRect(cr, x, y, segW*f, h, segmentRadius)
		cr.SetSourceRGBA(fill.R, fill.G, fill.B, fill.A)
		cr.Fill()
	}
}

func roundedRect(cr *cairo.Context, x, y, w, h, r float64) {
	r = math.Min(r, math.Min(w, h)/2)
	cr.NewPath()
	cr.Arc(x+w-r, y+r, r, -math.Pi/2, 0)
	cr.Arc(x+w-r, y+h-r, r, 0, math.Pi/2)
	cr.Arc(x+r, y+h-r, r, math.Pi/2, math.Pi)
	cr.Arc(x+r, y+r, r, math.Pi, 3*math.Pi/2)
	cr.ClosePath()
}
