package hud

import (
	"fmt"
	"math"

	"github.com/euxx/volume-grid-sub001/internal/model"
)

// SegmentCount is the number of blocks in the volume bar.
const SegmentCount = 16

// quarters is the bar resolution per segment.
const quarters = 4

const (
	// NotSupportedText replaces the segment count for devices without
	// software volume.
	NotSupportedText = "Not Supported"

	// widestLabel is the longest segment label, used to size windows so the
	// layout does not jump as the fraction changes.
	widestLabel = "15+3/4 / 16"
)

// QuarterSegments converts a scalar to segments rounded to a quarter segment.
func QuarterSegments(scalar float64) float64 {
	return math.Round(model.Clamp(scalar)*SegmentCount*quarters) / quarters
}

// SegmentFills returns the fill of every block, each in {0, .25, .5, .75, 1}.
func SegmentFills(segments float64) [SegmentCount]float64 {
	var fills [SegmentCount]float64
	for i := range fills {
		fill := math.Max(0, math.Min(1, segments-float64(i)))
		fills[i] = math.Round(fill*quarters) / quarters
	}
	return fills
}

// SegmentLabel formats segments as "<whole>[+<n>/4] / 16".
func SegmentLabel(segments float64) string {
	whole := math.Floor(segments)
	frac := int(math.Round((segments - whole) * quarters))
	if frac == quarters {
		whole++
		frac = 0
	}
	if frac == 0 {
		return fmt.Sprintf("%d / %d", int(whole), SegmentCount)
	}
	return fmt.Sprintf("%d+%d/%d / %d", int(whole), frac, quarters, SegmentCount)
}

// Band is a coarse volume level used to pick the speaker icon.
type Band int

const (
	BandMuted Band = iota
	BandLow
	BandMedium
	BandHigh
)

// BandFor partitions a percentage into bands. The HUD and the status surfaces
// both use it so their icons agree.
func BandFor(percentage int, muted, unsupported bool) Band {
	switch {
	case muted || unsupported || percentage <= 0:
		return BandMuted
	case percentage <= 33:
		return BandLow
	case percentage <= 66:
		return BandMedium
	default:
		return BandHigh
	}
}

func (b Band) String() string {
	switch b {
	case BandMuted:
		return "muted"
	case BandLow:
		return "low"
	case BandMedium:
		return "medium"
	default:
		return "high"
	}
}

// IconName is the freedesktop symbolic icon for the band.
func (b Band) IconName() string {
	return "audio-volume-" + b.String() + "-symbolic"
}

// IconSize is the icon pixel size for the band.
func (b Band) IconSize() int {
	switch b {
	case BandMuted:
		return 36
	case BandLow:
		return 40
	case BandMedium:
		return 44
	default:
		return 48
	}
}

// View is everything a window needs to draw one HUD frame.
type View struct {
	ID          string
	Band        Band
	DeviceName  string
	StatusText  string
	Segments    float64
	Fills       [SegmentCount]float64
	Muted       bool
	Unsupported bool
}

// BuildView derives the rendered state from a HUD request. A muted device, or
// one within epsilon of silence, renders an empty bar.
func BuildView(ctx model.HUDContext) View {
	scalar := model.Clamp(ctx.VolumeScalar)
	muted := ctx.IsMuted || model.NearZero(scalar)
	if muted {
		scalar = 0
	}

	segments := QuarterSegments(scalar)
	status := SegmentLabel(segments)
	if ctx.IsUnsupported {
		status = NotSupportedText
	}

	return View{
		ID:          ctx.ID,
		Band:        BandFor(model.Percentage(scalar), muted, ctx.IsUnsupported),
		DeviceName:  ctx.DeviceName,
		StatusText:  status,
		Segments:    segments,
		Fills:       SegmentFills(segments),
		Muted:       muted,
		Unsupported: ctx.IsUnsupported,
	}
}

// TextRole selects the font a Measurer measures with.
type TextRole int

const (
	TextDeviceName TextRole = iota
	TextStatus
)

// Measurer measures rendered text widths in pixels.
type Measurer interface {
	TextWidth(text string, role TextRole) int
}

// Layout metrics in pixels.
const (
	HorizontalMargin = 24
	TextGap          = 16
)

// Width is the window width for a view: the device name and the widest
// possible status text plus margins, never below minWidth.
func Width(m Measurer, deviceName string, unsupported bool, minWidth int) int {
	status := widestLabel
	if unsupported {
		status = NotSupportedText
	}

	w := 2*HorizontalMargin + m.TextWidth(status, TextStatus)
	if deviceName != "" {
		w += TextGap + m.TextWidth(deviceName, TextDeviceName)
	}
	return max(w, minWidth)
}
