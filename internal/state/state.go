// Package state holds the volume monitor's cross-goroutine fields.
//
// Every accessor takes the lock, touches one field and releases it. There is
// no multi-field transaction: a reader may observe one field updated before a
// correlated one. Callers never hold the lock across a hardware call.
package state

import (
	"slices"
	"sync"

	"github.com/euxx/volume-grid-sub001/internal/audio"
	"github.com/euxx/volume-grid-sub001/internal/model"
)

// VolumeState is shared between the worker and the UI goroutine.
type VolumeState struct {
	mu sync.Mutex

	activeDevice    model.DeviceID
	listeningDevice model.DeviceID

	volumeElements           audio.ElementSet
	muteElements             audio.ElementSet
	registeredVolumeElements audio.ElementSet
	registeredMuteElements   audio.ElementSet

	lastScalar    float64
	hasLastScalar bool

	muted     bool
	listening bool
}

// New returns an empty state.
func New() *VolumeState {
	return &VolumeState{}
}

func (s *VolumeState) ActiveDevice() model.DeviceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeDevice
}

func (s *VolumeState) SetActiveDevice(id model.DeviceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeDevice = id
}

// ListeningDevice is the device whose listeners are installed, or model.NoDevice.
func (s *VolumeState) ListeningDevice() model.DeviceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listeningDevice
}

func (s *VolumeState) SetListeningDevice(id model.DeviceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeningDevice = id
}

func (s *VolumeState) VolumeElements() audio.ElementSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volumeElements.Clone()
}

func (s *VolumeState) SetVolumeElements(elems audio.ElementSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumeElements = elems.Clone()
}

func (s *VolumeState) MuteElements() audio.ElementSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muteElements.Clone()
}

func (s *VolumeState) SetMuteElements(elems audio.ElementSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muteElements = elems.Clone()
}

// RegisteredVolumeElements are the volume elements with a confirmed listener.
func (s *VolumeState) RegisteredVolumeElements() audio.ElementSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registeredVolumeElements.Clone()
}

func (s *VolumeState) SetRegisteredVolumeElements(elems audio.ElementSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registeredVolumeElements = elems.Clone()
}

// RegisteredMuteElements are the mute elements with a confirmed listener.
func (s *VolumeState) RegisteredMuteElements() audio.ElementSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registeredMuteElements.Clone()
}

func (s *VolumeState) SetRegisteredMuteElements(elems audio.ElementSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registeredMuteElements = elems.Clone()
}

// LastScalar returns the last observed volume scalar; ok is false before the
// first observation or after ClearLastScalar.
func (s *VolumeState) LastScalar() (scalar float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScalar, s.hasLastScalar
}

func (s *VolumeState) SetLastScalar(scalar float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScalar = scalar
	s.hasLastScalar = true
}

func (s *VolumeState) ClearLastScalar() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScalar = 0
	s.hasLastScalar = false
}

func (s *VolumeState) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

func (s *VolumeState) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
}

func (s *VolumeState) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

func (s *VolumeState) SetListening(listening bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = listening
}

// Snapshot is a point-in-time copy for logging and the CLI status output.
// Fields are read one at a time, so the copy is not atomic.
type Snapshot struct {
	ActiveDevice             model.DeviceID   `json:"active_device" yaml:"active_device"`
	ListeningDevice          model.DeviceID   `json:"listening_device" yaml:"listening_device"`
	VolumeElements           audio.ElementSet `json:"volume_elements" yaml:"volume_elements"`
	MuteElements             audio.ElementSet `json:"mute_elements" yaml:"mute_elements"`
	RegisteredVolumeElements audio.ElementSet `json:"registered_volume_elements" yaml:"registered_volume_elements"`
	RegisteredMuteElements   audio.ElementSet `json:"registered_mute_elements" yaml:"registered_mute_elements"`
	Muted                    bool             `json:"muted" yaml:"muted"`
	Listening                bool             `json:"listening" yaml:"listening"`
}

// Snapshot copies every field through its accessor.
func (s *VolumeState) Snapshot() Snapshot {
	return Snapshot{
		ActiveDevice:             s.ActiveDevice(),
		ListeningDevice:          s.ListeningDevice(),
		VolumeElements:           s.VolumeElements(),
		MuteElements:             s.MuteElements(),
		RegisteredVolumeElements: s.RegisteredVolumeElements(),
		RegisteredMuteElements:   s.RegisteredMuteElements(),
		Muted:                    s.Muted(),
		Listening:                s.Listening(),
	}
}

// Equal reports whether two snapshots hold the same values.
func (a Snapshot) Equal(b Snapshot) bool {
	return a.ActiveDevice == b.ActiveDevice &&
		a.ListeningDevice == b.ListeningDevice &&
		slices.Equal(a.VolumeElements, b.VolumeElements) &&
		slices.Equal(a.MuteElements, b.MuteElements) &&
		slices.Equal(a.RegisteredVolumeElements, b.RegisteredVolumeElements) &&
		slices.Equal(a.RegisteredMuteElements, b.RegisteredMuteElements) &&
		a.Muted == b.Muted &&
		a.Listening == b.Listening
}
