// Package model defines the core data types shared between the audio monitor,
// the HUD and the command line surfaces.
package model

import (
	"crypto/rand"
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
)

// Epsilon is the tolerance used when comparing volume scalars.
const Epsilon = 0.001

// DeviceID is an opaque hardware identifier for an audio device.
// NoDevice (0) means "no device".
type DeviceID uint32

// NoDevice is the sentinel returned when no device could be resolved.
const NoDevice DeviceID = 0

// AudioDevice is an output device as seen during one enumeration.
// Identity is the ID; Name is display-only and may be stale after a rename.
type AudioDevice struct {
	ID   DeviceID `json:"id" yaml:"id"`
	Name string   `json:"name" yaml:"name"`
}

// String implements fmt.Stringer.
func (d AudioDevice) String() string {
	return fmt.Sprintf("%s (%d)", d.Name, d.ID)
}

// HUDContext is an immutable snapshot handed to the HUD for one display request.
type HUDContext struct {
	ID            string    // ULID, correlates show/hide log lines
	VolumeScalar  float64   // Raw scalar, clamped by the HUD
	DeviceName    string    // Empty when unknown
	IsMuted       bool      // Explicit mute flag
	IsUnsupported bool      // Device exposes no software volume
	CreatedAt     time.Time // When the snapshot was taken
}

// NewHUDContext builds a fresh HUD snapshot.
func NewHUDContext(scalar float64, deviceName string, muted, unsupported bool) HUDContext {
	now := time.Now()
	return HUDContext{
		ID:            ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		VolumeScalar:  scalar,
		DeviceName:    deviceName,
		IsMuted:       muted,
		IsUnsupported: unsupported,
		CreatedAt:     now,
	}
}

// HasDeviceName reports whether the snapshot carries a device name.
func (c HUDContext) HasDeviceName() bool {
	return c.DeviceName != ""
}

// Clamp limits a scalar to [0, 1]. NaN becomes 0.
func Clamp(scalar float64) float64 {
	if math.IsNaN(scalar) || scalar < 0 {
		return 0
	}
	if scalar > 1 {
		return 1
	}
	return scalar
}

// Percentage converts a scalar to an integer percentage in [0, 100].
func Percentage(scalar float64) int {
	return int(math.Round(Clamp(scalar) * 100))
}

// ScalarFromPercentage converts a percentage back to a clamped scalar.
func ScalarFromPercentage(percentage int) float64 {
	return Clamp(float64(percentage) / 100)
}

// NearZero reports whether a scalar is within Epsilon of 0.
func NearZero(scalar float64) bool {
	return math.Abs(scalar) <= Epsilon
}

// NearOne reports whether a scalar is within Epsilon of 1.
func NearOne(scalar float64) bool {
	return math.Abs(scalar-1) <= Epsilon
}
