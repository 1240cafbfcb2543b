package hud

// RGBA is a color with components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Style is the palette for one render pass, resolved from the appearance
// once before drawing.
type Style struct {
	Dark         bool
	Background   RGBA
	Foreground   RGBA
	SegmentEmpty RGBA
	SegmentFill  RGBA
	CornerRadius float64
}

// Appearance reports the system color scheme.
type Appearance interface {
	Dark() bool
}

// StaticAppearance is a fixed Appearance.
type StaticAppearance bool

// Dark implements Appearance.
func (a StaticAppearance) Dark() bool { return bool(a) }

// StyleFor returns the palette for a color scheme.
func StyleFor(dark bool) Style {
	if dark {
		return Style{
			Dark:         true,
			Background:   RGBA{0.12, 0.12, 0.12, 0.92},
			Foreground:   RGBA{1, 1, 1, 1},
			SegmentEmpty: RGBA{1, 1, 1, 0.18},
			SegmentFill:  RGBA{1, 1, 1, 0.95},
			CornerRadius: 18,
		}
	}
	return Style{
		Background:   RGBA{0.96, 0.96, 0.96, 0.92},
		Foreground:   RGBA{0.1, 0.1, 0.1, 1},
		SegmentEmpty: RGBA{0, 0, 0, 0.15},
		SegmentFill:  RGBA{0.1, 0.1, 0.1, 0.9},
		CornerRadius: 18,
	}
}
