package audio

import (
	"fmt"
	"log/slog"

	"github.com/euxx/volume-grid-sub001/internal/model"
)

// candidateElements is the probe order: aggregate first, then left/right.
var candidateElements = []Element{ElementMain, 1, 2}

// Notification is delivered when a subscribed hardware property changes.
type Notification struct {
	Device   model.DeviceID
	Property Property
	Element  Element
}

// Adapter is a stateless façade over a HAL implementing the device policies:
// aggregate-exclusive element detection, averaged reads, any-success writes.
// All methods block on hardware I/O and must not run on the UI queue.
type Adapter struct {
	hal    HAL
	logger *slog.Logger
}

// NewAdapter creates an adapter over hal.
func NewAdapter(hal HAL, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{hal: hal, logger: logger}
}

// DefaultOutputDevice returns the default output device, or model.NoDevice.
func (a *Adapter) DefaultOutputDevice() model.DeviceID {
	id, err := a.hal.DefaultOutputDevice()
	if err != nil {
		a.logger.Debug("failed to resolve default output device", "error", err)
		return model.NoDevice
	}
	return id
}

// DetectVolumeElements returns the elements that expose a volume scalar.
func (a *Adapter) DetectVolumeElements(device model.DeviceID) ElementSet {
	return a.detect(device, PropertyVolume, nil)
}

// DetectMuteElements returns the elements that expose a readable mute flag.
// Some devices publish the mute key but reject reads; those are excluded.
func (a *Adapter) DetectMuteElements(device model.DeviceID) ElementSet {
	return a.detect(device, PropertyMute, func(elem Element) bool {
		_, err := a.hal.Mute(device, elem)
		return err == nil
	})
}

func (a *Adapter) detect(device model.DeviceID, prop Property, readable func(Element) bool) ElementSet {
	if device == model.NoDevice {
		return nil
	}

	var found []Element
	for _, elem := range candidateElements {
		if !a.hal.HasProperty(device, prop, elem) {
			continue
		}
		if readable != nil && !readable(elem) {
			continue
		}
		if elem == ElementMain {
			return ElementSet{ElementMain}
		}
		found = append(found, elem)
	}

	set := NewElementSet(found...)
	a.logger.Debug("detected elements", "device", device, "property", prop, "elements", set)
	return set
}

// CurrentVolume returns the mean scalar across readable elements.
// ok is false when no element could be read.
func (a *Adapter) CurrentVolume(device model.DeviceID, elems ElementSet) (scalar float64, ok bool) {
	if device == model.NoDevice {
		return 0, false
	}

	var sum float64
	var n int
	for _, elem := range elems {
		v, err := a.hal.Scalar(device, elem)
		if err != nil {
			a.logger.Debug("volume read failed", "device", device, "element", elem, "error", err)
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return model.Clamp(sum / float64(n)), true
}

// SetVolume writes the clamped scalar to every element and reports whether at
// least one write succeeded.
func (a *Adapter) SetVolume(scalar float64, device model.DeviceID, elems ElementSet) bool {
	if device == model.NoDevice {
		return false
	}
	scalar = model.Clamp(scalar)

	success := false
	for _, elem := range elems {
		if err := a.hal.SetScalar(device, elem, scalar); err != nil {
			a.logger.Debug("volume write failed", "device", device, "element", elem, "error", err)
			continue
		}
		success = true
	}
	return success
}

// MuteState reports muted if any readable element is muted.
// ok is false when no element could be read.
func (a *Adapter) MuteState(device model.DeviceID, elems ElementSet) (muted bool, ok bool) {
	if device == model.NoDevice {
		return false, false
	}

	for _, elem := range elems {
		m, err := a.hal.Mute(device, elem)
		if err != nil {
			a.logger.Debug("mute read failed", "device", device, "element", elem, "error", err)
			continue
		}
		ok = true
		if m {
			muted = true
		}
	}
	return muted, ok
}

// SetMute writes the flag to every element and reports whether at least one
// write succeeded.
func (a *Adapter) SetMute(muted bool, device model.DeviceID, elems ElementSet) bool {
	if device == model.NoDevice {
		return false
	}

	success := false
	for _, elem := range elems {
		if err := a.hal.SetMute(device, elem, muted); err != nil {
			a.logger.Debug("mute write failed", "device", device, "element", elem, "error", err)
			continue
		}
		success = true
	}
	return success
}

// AllDevices enumerates output devices. Devices whose name cannot be read get a
// generic placeholder name.
func (a *Adapter) AllDevices() []model.AudioDevice {
	ids, err := a.hal.Devices()
	if err != nil {
		a.logger.Warn("failed to enumerate audio devices", "error", err)
		return nil
	}

	devices := make([]model.AudioDevice, 0, len(ids))
	for _, id := range ids {
		name, ok := a.DeviceName(id)
		if !ok {
			name = fmt.Sprintf("Audio Device %d", id)
		}
		devices = append(devices, model.AudioDevice{ID: id, Name: name})
	}
	return devices
}

// DeviceName returns the display name of a device.
func (a *Adapter) DeviceName(id model.DeviceID) (string, bool) {
	if id == model.NoDevice {
		return "", false
	}
	name, err := a.hal.DeviceName(id)
	if err != nil || name == "" {
		a.logger.Debug("failed to read device name", "device", id, "error", err)
		return "", false
	}
	return name, true
}

// Subscribe registers a listener that delivers a Notification on ch whenever the
// property changes. Sends never block: if ch is full the notification is dropped,
// every consumer re-reads hardware state anyway.
func (a *Adapter) Subscribe(device model.DeviceID, prop Property, elem Element, ch chan<- Notification) error {
	note := Notification{Device: device, Property: prop, Element: elem}
	err := a.hal.AddListener(device, prop, elem, func() {
		select {
		case ch <- note:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s on device %d element %d: %w", prop, device, elem, err)
	}
	return nil
}

// Unsubscribe removes a listener registered with Subscribe.
func (a *Adapter) Unsubscribe(device model.DeviceID, prop Property, elem Element) error {
	if err := a.hal.RemoveListener(device, prop, elem); err != nil {
		return fmt.Errorf("unsubscribe %s on device %d element %d: %w", prop, device, elem, err)
	}
	return nil
}
