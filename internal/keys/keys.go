// Package keys filters hardware media-key events down to volume key presses.
package keys

import (
	"fmt"
	"time"
)

// SubtypeAuxControlButtons is the system-defined event subtype carrying
// hardware media keys.
const SubtypeAuxControlButtons = 8

// Key states carried in bits 8-15 of the key flags.
const (
	stateKeyDown = 0x0A
	stateKeyUp   = 0x0B
)

// KeyCode identifies a hardware media key.
type KeyCode int

const (
	KeyVolumeUp   KeyCode = 0
	KeyVolumeDown KeyCode = 1
	KeyMute       KeyCode = 7
)

// String returns the key name.
func (k KeyCode) String() string {
	switch k {
	case KeyVolumeUp:
		return "volume-up"
	case KeyVolumeDown:
		return "volume-down"
	case KeyMute:
		return "mute"
	default:
		return fmt.Sprintf("key-%d", int(k))
	}
}

// Volume reports whether k is one of the recognized volume keys.
func (k KeyCode) Volume() bool {
	return k == KeyVolumeUp || k == KeyVolumeDown || k == KeyMute
}

// RawEvent is a system-defined event as delivered by a tap.
type RawEvent struct {
	Subtype   int
	Data1     int64
	Timestamp time.Duration // since boot
}

// Key is a decoded media-key event.
type Key struct {
	Code   KeyCode
	Flags  uint16
	State  uint8
	Repeat bool
}

// Down reports whether the event is a key-down transition.
func (k Key) Down() bool { return k.State == stateKeyDown }

// Up reports whether the event is a key-up transition.
func (k Key) Up() bool { return k.State == stateKeyUp }

// Decode unpacks a raw event. ok is false for subtypes other than media keys.
func Decode(ev RawEvent) (key Key, ok bool) {
	if ev.Subtype != SubtypeAuxControlButtons {
		return Key{}, false
	}
	payload := uint32(ev.Data1)
	flags := uint16(payload & 0xFFFF)
	return Key{
		Code:   KeyCode((payload & 0xFFFF0000) >> 16),
		Flags:  flags,
		State:  uint8((flags & 0xFF00) >> 8),
		Repeat: flags&0x1 != 0,
	}, true
}

// Signature identifies one accepted key press for duplicate suppression.
type Signature struct {
	Timestamp time.Duration
	Payload   int64
}

// Duplicates reports whether s and other carry the same payload within window.
func (s Signature) Duplicates(other Signature, window time.Duration) bool {
	if s.Payload != other.Payload {
		return false
	}
	d := s.Timestamp - other.Timestamp
	if d < 0 {
		d = -d
	}
	return d <= window
}

// Tap is a source of system-defined events. Start delivers events to sink from
// a tap-owned goroutine until Stop.
type Tap interface {
	Start(sink func(RawEvent)) error
	Stop()
}

// TapMode selects whether a tap only observes events or sits in the event path.
type TapMode int

const (
	// TapPassive observes events without being able to delay them.
	TapPassive TapMode = iota
	// TapActive sits in the event path and passes every event through unchanged.
	TapActive
)

func (m TapMode) String() string {
	if m == TapActive {
		return "active"
	}
	return "passive"
}
