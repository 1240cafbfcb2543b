// Package monitor keeps the published view of the system output volume in
// sync with the hardware and emits HUD requests when it changes.
//
// Three goroutine contexts are involved. Hardware callbacks only push a
// Notification onto a channel. Run forwards each notification to the worker
// queue, which owns every hardware read and write. Anything visible to the UI
// (published values, HUD events) is written from the UI queue only.
package monitor

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/samber/lo"

	"github.com/euxx/volume-grid-sub001/internal/audio"
	"github.com/euxx/volume-grid-sub001/internal/dispatch"
	"github.com/euxx/volume-grid-sub001/internal/model"
	"github.com/euxx/volume-grid-sub001/internal/observe"
	"github.com/euxx/volume-grid-sub001/internal/state"
)

// notificationBuffer bounds hardware notifications waiting for the worker.
// Overflow is dropped; every handler re-reads hardware state.
const notificationBuffer = 64

// Keys is the hardware key filter the monitor drives.
type Keys interface {
	Start(handler func()) error
	Stop()
}

// Options configures a Monitor.
type Options struct {
	// Worker runs every hardware call. Defaults to dispatch.Inline.
	Worker dispatch.Queue
	// UI publishes values and HUD events. Defaults to dispatch.Inline.
	UI dispatch.Queue
	// OnKeyPress runs on the UI queue for every accepted volume key press.
	OnKeyPress func()
	Logger     *slog.Logger
}

// Monitor tracks the default output device.
type Monitor struct {
	adapter *audio.Adapter
	keys    Keys
	worker  dispatch.Queue
	ui      dispatch.Queue
	logger  *slog.Logger

	onKeyPress func()

	state *state.VolumeState
	notes chan audio.Notification

	// listenMu serializes StartListening and StopListening.
	listenMu    sync.Mutex
	systemProps []audio.Property

	volumePercentage *observe.Value[int]
	audioDevices     *observe.Value[[]model.AudioDevice]
	currentDevice    *observe.Value[*model.AudioDevice]
	muted            *observe.Value[bool]
	hud              *observe.Stream[model.HUDContext]
}

// New creates a monitor and seeds its published values from the current
// default output device. It must be called on the UI queue.
func New(adapter *audio.Adapter, keys Keys, opts Options) *Monitor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Worker == nil {
		opts.Worker = dispatch.Inline{}
	}
	if opts.UI == nil {
		opts.UI = dispatch.Inline{}
	}

	m := &Monitor{
		adapter:          adapter,
		keys:             keys,
		worker:           opts.Worker,
		ui:               opts.UI,
		logger:           opts.Logger,
		onKeyPress:       opts.OnKeyPress,
		state:            state.New(),
		notes:            make(chan audio.Notification, notificationBuffer),
		volumePercentage: observe.NewValue(0),
		audioDevices:     observe.NewValue[[]model.AudioDevice](nil),
		currentDevice:    observe.NewValue[*model.AudioDevice](nil),
		muted:            observe.NewValue(false),
		hud:              observe.NewStream[model.HUDContext](),
	}
	m.seed()
	return m
}

func (m *Monitor) seed() {
	dev := m.adapter.DefaultOutputDevice()
	m.state.SetActiveDevice(dev)

	if dev != model.NoDevice {
		volElems := m.adapter.DetectVolumeElements(dev)
		m.state.SetVolumeElements(volElems)
		if v, ok := m.adapter.CurrentVolume(dev, volElems); ok {
			m.state.SetLastScalar(v)
			m.volumePercentage.Set(model.Percentage(v))
		}

		muteElems := m.adapter.DetectMuteElements(dev)
		m.state.SetMuteElements(muteElems)
		if muted, ok := m.adapter.MuteState(dev, muteElems); ok {
			m.state.SetMuted(muted)
			m.muted.Set(muted)
		}
	}

	devices := m.adapter.AllDevices()
	m.audioDevices.Set(devices)
	m.currentDevice.Set(m.resolveDevice(dev, devices))

	m.logger.Info("audio monitor initialized",
		"device", dev,
		"volume", m.volumePercentage.Get(),
		"muted", m.muted.Get(),
		"devices", len(devices),
	)
}

// VolumePercentage is the published volume in [0, 100].
func (m *Monitor) VolumePercentage() observe.Observable[int] { return m.volumePercentage }

// AudioDevices is the published list of output devices.
func (m *Monitor) AudioDevices() observe.Observable[[]model.AudioDevice] { return m.audioDevices }

// CurrentDevice is the published default output device, nil when unknown.
func (m *Monitor) CurrentDevice() observe.Observable[*model.AudioDevice] { return m.currentDevice }

// Muted is the published mute flag.
func (m *Monitor) Muted() observe.Observable[bool] { return m.muted }

// OnHUD subscribes fn to HUD display requests.
func (m *Monitor) OnHUD(fn func(model.HUDContext)) (cancel func()) {
	return m.hud.Subscribe(fn)
}

// HUDEvents subscribes a buffered channel to HUD display requests.
func (m *Monitor) HUDEvents(buffer int) (<-chan model.HUDContext, func()) {
	return m.hud.Chan(buffer)
}

// State returns a copy of the shared state for diagnostics.
func (m *Monitor) State() state.Snapshot {
	return m.state.Snapshot()
}

// Scalar returns the last volume scalar read from or written to the tracked
// device. ok is false when its volume could not be read.
func (m *Monitor) Scalar() (scalar float64, ok bool) {
	return m.state.LastScalar()
}

// Supported reports whether the tracked device exposes a software volume.
func (m *Monitor) Supported() bool {
	return m.state.ActiveDevice() != model.NoDevice && len(m.state.VolumeElements()) > 0
}

// Run forwards hardware notifications to the worker queue until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-m.notes:
			m.worker.Post(func() { m.handleNotification(n) })
		}
	}
}

// GetAudioDevices enumerates output devices and republishes the list.
// It blocks on hardware I/O.
func (m *Monitor) GetAudioDevices() []model.AudioDevice {
	devices := m.adapter.AllDevices()
	m.ui.Post(func() { m.audioDevices.Set(devices) })
	return devices
}

// SetVolume writes scalar to the default output device on the worker queue.
// A positive scalar also unmutes. The returned channel is closed once the
// result has been published on the UI queue.
func (m *Monitor) SetVolume(scalar float64) <-chan struct{} {
	scalar = model.Clamp(scalar)
	done := make(chan struct{})

	m.worker.Post(func() {
		dev := m.adapter.DefaultOutputDevice()
		ok := m.adapter.SetVolume(scalar, dev, m.elementsFor(dev, audio.PropertyVolume))
		if !ok {
			m.logger.Warn("failed to set volume", "device", dev, "scalar", scalar)
		} else {
			m.state.SetLastScalar(scalar)
		}

		if scalar > 0 {
			muteElems := m.elementsFor(dev, audio.PropertyMute)
			switch {
			case m.adapter.SetMute(false, dev, muteElems):
				m.state.SetMuted(false)
			case len(muteElems) > 0:
				m.logger.Warn("failed to clear mute", "device", dev)
			}
		}
		muted := m.state.Muted()

		m.ui.Post(func() {
			defer close(done)
			if ok {
				m.volumePercentage.Set(model.Percentage(scalar))
			}
			if scalar > 0 {
				m.muted.Set(muted)
			}
		})
	})
	return done
}

// SetPercentage is SetVolume for an integer percentage.
func (m *Monitor) SetPercentage(percentage int) <-chan struct{} {
	return m.SetVolume(model.ScalarFromPercentage(percentage))
}

// SetMuted writes the mute flag on the worker queue and shows the HUD.
func (m *Monitor) SetMuted(muted bool) <-chan struct{} {
	done := make(chan struct{})

	m.worker.Post(func() {
		dev := m.adapter.DefaultOutputDevice()
		if !m.adapter.SetMute(muted, dev, m.elementsFor(dev, audio.PropertyMute)) {
			m.logger.Warn("failed to set mute", "device", dev, "muted", muted)
			m.ui.Post(func() { close(done) })
			return
		}
		m.state.SetMuted(muted)
		scalar, _ := m.state.LastScalar()

		m.ui.Post(func() {
			defer close(done)
			m.muted.Set(muted)
			m.showHUD(scalar, muted, false)
		})
	})
	return done
}

// elementsFor returns the cached elements when dev is the tracked device and
// detects them otherwise.
func (m *Monitor) elementsFor(dev model.DeviceID, prop audio.Property) audio.ElementSet {
	var cached audio.ElementSet
	var detect func(model.DeviceID) audio.ElementSet
	if prop == audio.PropertyMute {
		cached, detect = m.state.MuteElements(), m.adapter.DetectMuteElements
	} else {
		cached, detect = m.state.VolumeElements(), m.adapter.DetectVolumeElements
	}
	if dev == m.state.ActiveDevice() && len(cached) > 0 {
		return cached
	}
	return detect(dev)
}

// StartListening subscribes to the default output device, the system device
// properties and the hardware keys. It is a no-op if already listening to the
// current default device, and restarts if the default device changed.
func (m *Monitor) StartListening() {
	m.listenMu.Lock()
	defer m.listenMu.Unlock()
	m.startListeningLocked()
}

// Losing every output device while listening keeps the system and key
// listeners installed, with no device listeners, so a returning device is
// still noticed. Only a start without any device installs nothing.
func (m *Monitor) startListeningLocked() {
	dev := m.adapter.DefaultOutputDevice()
	wasListening := m.state.Listening()
	if wasListening {
		if m.state.ListeningDevice() == dev {
			return
		}
		m.stopListeningLocked()
	}
	if dev == model.NoDevice && !wasListening {
		m.logger.Warn("no output device, not listening")
		return
	}
	m.state.SetActiveDevice(dev)

	var registered audio.ElementSet
	if dev != model.NoDevice {
		volElems := m.adapter.DetectVolumeElements(dev)
		m.state.SetVolumeElements(volElems)
		registered = m.subscribeElements(dev, audio.PropertyVolume, volElems)
	} else {
		m.state.SetVolumeElements(nil)
	}
	m.state.SetRegisteredVolumeElements(registered)

	if len(registered) > 0 {
		muteElems := m.adapter.DetectMuteElements(dev)
		m.state.SetMuteElements(muteElems)
		m.state.SetRegisteredMuteElements(m.subscribeElements(dev, audio.PropertyMute, muteElems))
	} else {
		m.state.SetMuteElements(nil)
		m.state.SetRegisteredMuteElements(nil)
	}

	if err := m.keys.Start(m.handleKeyPress); err != nil {
		m.logger.Warn("hardware key monitoring unavailable", "error", err)
	}

	for _, prop := range []audio.Property{audio.PropertyDefaultOutputDevice, audio.PropertyDevices} {
		if err := m.adapter.Subscribe(audio.SystemObject, prop, audio.ElementMain, m.notes); err != nil {
			m.logger.Warn("failed to subscribe to system property", "property", prop, "error", err)
			continue
		}
		m.systemProps = append(m.systemProps, prop)
	}

	m.state.SetListeningDevice(dev)
	m.state.SetListening(true)
	m.logger.Info("listening for volume changes",
		"device", dev,
		"volume_elements", registered,
		"mute_elements", m.state.RegisteredMuteElements(),
	)
}

func (m *Monitor) subscribeElements(dev model.DeviceID, prop audio.Property, elems audio.ElementSet) audio.ElementSet {
	var registered audio.ElementSet
	for _, elem := range elems {
		if err := m.adapter.Subscribe(dev, prop, elem, m.notes); err != nil {
			m.logger.Warn("failed to subscribe", "device", dev, "property", prop, "element", elem, "error", err)
			continue
		}
		registered = append(registered, elem)
	}
	return registered
}

// StopListening removes every listener registered by StartListening, on the
// device that was being listened to, and stops the key filter.
func (m *Monitor) StopListening() {
	m.listenMu.Lock()
	defer m.listenMu.Unlock()
	m.stopListeningLocked()
}

func (m *Monitor) stopListeningLocked() {
	dev := m.state.ListeningDevice()

	for _, elem := range m.state.RegisteredVolumeElements() {
		if err := m.adapter.Unsubscribe(dev, audio.PropertyVolume, elem); err != nil {
			m.logger.Debug("failed to unsubscribe", "error", err)
		}
	}
	for _, elem := range m.state.RegisteredMuteElements() {
		if err := m.adapter.Unsubscribe(dev, audio.PropertyMute, elem); err != nil {
			m.logger.Debug("failed to unsubscribe", "error", err)
		}
	}
	m.state.SetRegisteredVolumeElements(nil)
	m.state.SetRegisteredMuteElements(nil)

	for _, prop := range m.systemProps {
		if err := m.adapter.Unsubscribe(audio.SystemObject, prop, audio.ElementMain); err != nil {
			m.logger.Debug("failed to unsubscribe", "error", err)
		}
	}
	m.systemProps = nil

	m.keys.Stop()

	wasListening := m.state.Listening()
	m.state.SetListening(false)
	m.state.SetListeningDevice(model.NoDevice)
	if wasListening {
		m.logger.Info("stopped listening", "device", dev)
	}
}

// Close stops listening.
func (m *Monitor) Close() {
	m.StopListening()
}

func (m *Monitor) handleNotification(n audio.Notification) {
	if n.Device != audio.SystemObject && n.Device != m.state.ListeningDevice() {
		m.logger.Debug("ignoring notification for stale device", "device", n.Device, "property", n.Property)
		return
	}

	switch n.Property {
	case audio.PropertyVolume:
		m.handleVolumeChange()
	case audio.PropertyMute:
		m.handleMuteChange()
	case audio.PropertyDefaultOutputDevice:
		m.handleDeviceChange()
	case audio.PropertyDevices:
		m.GetAudioDevices()
	}
}

// shouldAnnounce reports whether a volume change deserves a HUD. Repeats at
// either limit are announced so the user sees the limit was reached.
func shouldAnnounce(prev float64, hadPrev bool, cur float64) bool {
	if !hadPrev {
		return true
	}
	if math.Abs(prev-cur) > model.Epsilon {
		return true
	}
	if model.NearZero(prev) && model.NearZero(cur) {
		return true
	}
	return model.NearOne(prev) && model.NearOne(cur)
}

func (m *Monitor) handleVolumeChange() {
	dev := m.state.ActiveDevice()
	cur, ok := m.adapter.CurrentVolume(dev, m.state.VolumeElements())
	if !ok {
		m.logger.Debug("volume changed but could not be read", "device", dev)
		return
	}

	prev, hadPrev := m.state.LastScalar()
	m.state.SetLastScalar(cur)
	announce := shouldAnnounce(prev, hadPrev, cur)

	if cur > model.Epsilon && m.state.Muted() {
		m.state.SetMuted(false)
	}
	muted := m.state.Muted()

	m.ui.Post(func() {
		m.volumePercentage.Set(model.Percentage(cur))
		m.muted.Set(muted)
		if announce {
			m.showHUD(cur, muted, false)
		}
	})
}

func (m *Monitor) handleMuteChange() {
	dev := m.state.ActiveDevice()
	if muted, ok := m.adapter.MuteState(dev, m.state.MuteElements()); ok {
		m.state.SetMuted(muted)
	}
	muted := m.state.Muted()

	cur, ok := m.adapter.CurrentVolume(dev, m.state.VolumeElements())
	if ok {
		m.state.SetLastScalar(cur)
	} else {
		cur, _ = m.state.LastScalar()
	}

	m.ui.Post(func() {
		m.volumePercentage.Set(model.Percentage(cur))
		m.muted.Set(muted)
		m.showHUD(cur, muted, false)
	})
}

func (m *Monitor) handleDeviceChange() {
	m.listenMu.Lock()
	dev := m.adapter.DefaultOutputDevice()
	m.state.SetActiveDevice(dev)
	devices := m.adapter.AllDevices()

	// Restarts the listeners when the default device differs from the one
	// being listened to.
	m.startListeningLocked()
	m.listenMu.Unlock()

	current := m.resolveDevice(dev, devices)
	m.logger.Info("default output device changed", "device", dev, "name", lo.FromPtr(current).Name)

	volElems := m.state.VolumeElements()
	if dev != model.NoDevice && len(volElems) > 0 {
		if muted, ok := m.adapter.MuteState(dev, m.state.MuteElements()); ok {
			m.state.SetMuted(muted)
		}
	} else {
		m.state.SetMuted(false)
	}
	muted := m.state.Muted()

	cur, ok := m.adapter.CurrentVolume(dev, volElems)
	if ok {
		m.state.SetLastScalar(cur)
	} else {
		m.state.ClearLastScalar()
	}

	m.ui.Post(func() {
		m.audioDevices.Set(devices)
		m.currentDevice.Set(current)
		m.muted.Set(muted)
		if ok {
			m.volumePercentage.Set(model.Percentage(cur))
			m.showHUD(cur, muted, false)
			return
		}
		m.volumePercentage.Set(0)
		m.showHUD(0, muted, true)
	})
}

// handleKeyPress runs on the UI queue.
func (m *Monitor) handleKeyPress() {
	if m.onKeyPress != nil {
		m.onKeyPress()
	}

	m.worker.Post(func() {
		dev := m.state.ActiveDevice()
		if muted, ok := m.adapter.MuteState(dev, m.state.MuteElements()); ok {
			m.state.SetMuted(muted)
		}
		muted := m.state.Muted()
		cur, ok := m.adapter.CurrentVolume(dev, m.state.VolumeElements())
		if ok {
			m.state.SetLastScalar(cur)
		}

		m.ui.Post(func() {
			if ok {
				m.volumePercentage.Set(model.Percentage(cur))
			}
			m.muted.Set(muted)
			m.showHUD(cur, muted, !ok)
		})
	})
}

// showHUD runs on the UI queue.
func (m *Monitor) showHUD(scalar float64, muted, unsupported bool) {
	var name string
	if dev := m.currentDevice.Get(); dev != nil {
		name = dev.Name
	}
	ctx := model.NewHUDContext(scalar, name, muted, unsupported)
	m.logger.Debug("show hud",
		"id", ctx.ID,
		"volume", model.Percentage(scalar),
		"muted", muted,
		"unsupported", unsupported,
	)
	m.hud.Emit(ctx)
}

// resolveDevice finds dev in the enumeration, falling back to a direct name
// lookup when the enumeration does not contain it yet.
func (m *Monitor) resolveDevice(dev model.DeviceID, devices []model.AudioDevice) *model.AudioDevice {
	if dev == model.NoDevice {
		return nil
	}
	if found, ok := lo.Find(devices, func(d model.AudioDevice) bool { return d.ID == dev }); ok {
		return &found
	}
	if name, ok := m.adapter.DeviceName(dev); ok {
		return &model.AudioDevice{ID: dev, Name: name}
	}
	return nil
}
