package audio

import (
	"errors"
	"fmt"

	"github.com/euxx/volume-grid-sub001/internal/model"
)

// SystemObject addresses the hardware-wide object that owns the default device
// and device-list properties.
const SystemObject model.DeviceID = 1

// Property identifies a hardware property the adapter knows about.
type Property int

const (
	PropertyVolume Property = iota
	PropertyMute
	PropertyDefaultOutputDevice
	PropertyDevices
)

// String returns the property name.
func (p Property) String() string {
	switch p {
	case PropertyVolume:
		return "volume"
	case PropertyMute:
		return "mute"
	case PropertyDefaultOutputDevice:
		return "default-output-device"
	case PropertyDevices:
		return "devices"
	default:
		return "unknown"
	}
}

// Element is a channel element of a device property.
// ElementMain is the single aggregate element; 1..n are individual channels.
type Element uint32

// ElementMain is the aggregate channel element.
const ElementMain Element = 0

// HAL is the raw hardware property surface. Every call may block on hardware I/O.
type HAL interface {
	// DefaultOutputDevice returns the system default output device.
	DefaultOutputDevice() (model.DeviceID, error)
	// Devices returns the ids of all devices with at least one output stream.
	Devices() ([]model.DeviceID, error)
	// DeviceName returns the display name of a device.
	DeviceName(id model.DeviceID) (string, error)
	// HasProperty reports whether the object exposes the property key on an element.
	HasProperty(id model.DeviceID, prop Property, elem Element) bool
	// Scalar reads the volume scalar of an element.
	Scalar(id model.DeviceID, elem Element) (float64, error)
	// SetScalar writes the volume scalar of an element.
	SetScalar(id model.DeviceID, elem Element, value float64) error
	// Mute reads the mute flag of an element.
	Mute(id model.DeviceID, elem Element) (bool, error)
	// SetMute writes the mute flag of an element.
	SetMute(id model.DeviceID, elem Element, muted bool) error
	// AddListener registers fn for changes of a property. fn runs on a backend
	// thread and must not block.
	AddListener(id model.DeviceID, prop Property, elem Element, fn func()) error
	// RemoveListener unregisters a listener added with AddListener.
	RemoveListener(id model.DeviceID, prop Property, elem Element) error
}

var (
	// ErrUnsupportedPlatform is returned when no hardware backend exists for
	// the running platform.
	ErrUnsupportedPlatform = errors.New("audio backend not supported on this platform")

	// ErrNoDevice is returned when an operation needs a device but none resolved.
	ErrNoDevice = errors.New("no audio output device")

	// ErrAlreadyListening is returned when a listener is registered twice for the
	// same address.
	ErrAlreadyListening = errors.New("listener already registered")

	// ErrNotListening is returned when removing a listener that was never added.
	ErrNotListening = errors.New("listener not registered")
)

// StatusError wraps a non-zero status code returned by the hardware layer.
type StatusError struct {
	Op     string
	Status int32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d (%s)", e.Op, e.Status, fourCC(e.Status))
}

// fourCC renders a status as its four-character code when printable.
func fourCC(status int32) string {
	b := []byte{byte(status >> 24), byte(status >> 16), byte(status >> 8), byte(status)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return "-"
		}
	}
	return "'" + string(b) + "'"
}
