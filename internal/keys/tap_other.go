//go:build !darwin || !cgo

package keys

import "log/slog"

// noopTap never delivers events. Media keys are only tapped on macOS.
type noopTap struct{}

// NewTap returns a tap that does nothing on this platform.
func NewTap(mode TapMode, logger *slog.Logger) Tap {
	return noopTap{}
}

func (noopTap) Start(func(RawEvent)) error { return nil }

func (noopTap) Stop() {}
