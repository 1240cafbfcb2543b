package output

import (
	"strings"
	"time"

	"github.com/euxx/volume-grid-sub001/internal/hud"
	"github.com/euxx/volume-grid-sub001/internal/model"
)

// Status is one reading of the default output device.
type Status struct {
	Device     model.AudioDevice `json:"device" yaml:"device"`
	Supported  bool              `json:"supported" yaml:"supported"`
	Scalar     float64           `json:"scalar" yaml:"scalar"`
	Percentage int               `json:"percentage" yaml:"percentage"`
	Muted      bool              `json:"muted" yaml:"muted"`
	Segments   string            `json:"segments" yaml:"segments"`
	Band       string            `json:"band" yaml:"band"`
	At         time.Time         `json:"at" yaml:"at"`
}

// NewStatus derives a status the same way the HUD renders it.
func NewStatus(device model.AudioDevice, scalar float64, muted, supported bool, at time.Time) Status {
	view := hud.BuildView(model.HUDContext{
		VolumeScalar:  scalar,
		DeviceName:    device.Name,
		IsMuted:       muted,
		IsUnsupported: !supported,
	})

	pct := model.Percentage(scalar)
	if !supported {
		pct = 0
	}

	return Status{
		Device:     device,
		Supported:  supported,
		Scalar:     model.Clamp(scalar),
		Percentage: pct,
		Muted:      muted,
		Segments:   view.StatusText,
		Band:       view.Band.String(),
		At:         at,
	}
}

// Bar draws the segment bar with block characters, one per segment, using
// quarter blocks for partial fills.
func (s Status) Bar() string {
	if !s.Supported {
		return strings.Repeat("·", hud.SegmentCount)
	}

	scalar := s.Scalar
	if s.Muted {
		scalar = 0
	}
	fills := hud.SegmentFills(hud.QuarterSegments(scalar))

	var sb strings.Builder
	for _, f := range fills {
		sb.WriteRune(quarterBlock(f))
	}
	return sb.String()
}

func quarterBlock(fill float64) rune {
	switch {
	case fill >= 1:
		return '█'
	case fill >= 0.75:
		return '▊'
	case fill >= 0.5:
		return '▌'
	case fill >= 0.25:
		return '▎'
	default:
		return '░'
	}
}
