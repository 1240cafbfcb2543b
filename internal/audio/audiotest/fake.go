// Package audiotest provides an in-memory audio.HAL for tests.
package audiotest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/euxx/volume-grid-sub001/internal/audio"
	"github.com/euxx/volume-grid-sub001/internal/model"
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("injected failure")

// Device is the simulated state of one device.
type Device struct {
	Name string

	// Volume holds the scalar per exposed volume element.
	Volume map[audio.Element]float64
	// Muted holds the flag per exposed mute element.
	Muted map[audio.Element]bool

	// FailVolumeRead / FailVolumeWrite / FailMuteRead / FailMuteWrite make the
	// matching element reject the operation.
	FailVolumeRead  map[audio.Element]bool
	FailVolumeWrite map[audio.Element]bool
	FailMuteRead    map[audio.Element]bool
	FailMuteWrite   map[audio.Element]bool
	// FailListen makes listener registration fail for the element.
	FailListen map[audio.Element]bool
}

type listenerKey struct {
	id   model.DeviceID
	prop audio.Property
	elem audio.Element
}

// HAL is a thread-safe fake hardware layer.
type HAL struct {
	mu        sync.Mutex
	devices   map[model.DeviceID]*Device
	order     []model.DeviceID
	def       model.DeviceID
	listeners map[listenerKey]func()

	// added and removed record listener calls for assertions.
	added   []listenerKey
	removed []listenerKey
}

// NewHAL creates an empty fake.
func NewHAL() *HAL {
	return &HAL{
		devices:   make(map[model.DeviceID]*Device),
		listeners: make(map[listenerKey]func()),
	}
}

// AddDevice registers a device. The first device becomes the default.
func (h *HAL) AddDevice(id model.DeviceID, dev *Device) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if dev.Volume == nil {
		dev.Volume = map[audio.Element]float64{}
	}
	if dev.Muted == nil {
		dev.Muted = map[audio.Element]bool{}
	}
	if _, exists := h.devices[id]; !exists {
		h.order = append(h.order, id)
	}
	h.devices[id] = dev
	if h.def == model.NoDevice {
		h.def = id
	}
}

// SetDefault changes the default output device without notifying listeners.
func (h *HAL) SetDefault(id model.DeviceID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.def = id
}

// Device returns the simulated device for direct manipulation.
func (h *HAL) Device(id model.DeviceID) *Device {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.devices[id]
}

// Update runs fn with the lock held so tests can mutate device state safely.
func (h *HAL) Update(id model.DeviceID, fn func(d *Device)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d, ok := h.devices[id]; ok {
		fn(d)
	}
}

// Fire invokes the listener registered for the address, if any, and reports
// whether one was registered.
func (h *HAL) Fire(id model.DeviceID, prop audio.Property, elem audio.Element) bool {
	h.mu.Lock()
	fn := h.listeners[listenerKey{id, prop, elem}]
	h.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Listening reports whether a listener is registered for the address.
func (h *HAL) Listening(id model.DeviceID, prop audio.Property, elem audio.Element) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.listeners[listenerKey{id, prop, elem}]
	return ok
}

// ListenerCount returns the number of registered listeners.
func (h *HAL) ListenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// Removed returns how many RemoveListener calls targeted the address.
func (h *HAL) Removed(id model.DeviceID, prop audio.Property, elem audio.Element) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, k := range h.removed {
		if k == (listenerKey{id, prop, elem}) {
			n++
		}
	}
	return n
}

func (h *HAL) DefaultOutputDevice() (model.DeviceID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.def == model.NoDevice {
		return model.NoDevice, audio.ErrNoDevice
	}
	return h.def, nil
}

func (h *HAL) Devices() ([]model.DeviceID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.DeviceID(nil), h.order...), nil
}

func (h *HAL) DeviceName(id model.DeviceID) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.devices[id]
	if !ok {
		return "", fmt.Errorf("device %d: %w", id, audio.ErrNoDevice)
	}
	return d.Name, nil
}

func (h *HAL) HasProperty(id model.DeviceID, prop audio.Property, elem audio.Element) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id == audio.SystemObject {
		return prop == audio.PropertyDefaultOutputDevice || prop == audio.PropertyDevices
	}
	d, ok := h.devices[id]
	if !ok {
		return false
	}
	switch prop {
	case audio.PropertyVolume:
		_, ok = d.Volume[elem]
	case audio.PropertyMute:
		_, ok = d.Muted[elem]
	default:
		ok = false
	}
	return ok
}

func (h *HAL) Scalar(id model.DeviceID, elem audio.Element) (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.devices[id]
	if !ok {
		return 0, audio.ErrNoDevice
	}
	v, ok := d.Volume[elem]
	if !ok || d.FailVolumeRead[elem] {
		return 0, ErrInjected
	}
	return v, nil
}

func (h *HAL) SetScalar(id model.DeviceID, elem audio.Element, value float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.devices[id]
	if !ok {
		return audio.ErrNoDevice
	}
	if _, ok := d.Volume[elem]; !ok || d.FailVolumeWrite[elem] {
		return ErrInjected
	}
	d.Volume[elem] = value
	return nil
}

func (h *HAL) Mute(id model.DeviceID, elem audio.Element) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.devices[id]
	if !ok {
		return false, audio.ErrNoDevice
	}
	m, ok := d.Muted[elem]
	if !ok || d.FailMuteRead[elem] {
		return false, ErrInjected
	}
	return m, nil
}

func (h *HAL) SetMute(id model.DeviceID, elem audio.Element, muted bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.devices[id]
	if !ok {
		return audio.ErrNoDevice
	}
	if _, ok := d.Muted[elem]; !ok || d.FailMuteWrite[elem] {
		return ErrInjected
	}
	d.Muted[elem] = muted
	return nil
}

func (h *HAL) AddListener(id model.DeviceID, prop audio.Property, elem audio.Element, fn func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d, ok := h.devices[id]; ok && d.FailListen[elem] {
		return ErrInjected
	}
	key := listenerKey{id, prop, elem}
	if _, exists := h.listeners[key]; exists {
		return audio.ErrAlreadyListening
	}
	h.listeners[key] = fn
	h.added = append(h.added, key)
	return nil
}

func (h *HAL) RemoveListener(id model.DeviceID, prop audio.Property, elem audio.Element) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := listenerKey{id, prop, elem}
	h.removed = append(h.removed, key)
	if _, exists := h.listeners[key]; !exists {
		return audio.ErrNotListening
	}
	delete(h.listeners, key)
	return nil
}

var _ audio.HAL = (*HAL)(nil)
