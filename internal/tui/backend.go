package tui

import (
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/euxx/volume-grid-sub001/internal/adapter/output"
	"github.com/euxx/volume-grid-sub001/internal/model"
	"github.com/euxx/volume-grid-sub001/internal/monitor"
)

// Backend is the volume source the TUI drives.
type Backend interface {
	Status() output.Status
	Devices() []model.AudioDevice
	SetVolume(scalar float64) <-chan struct{}
	SetMuted(muted bool) <-chan struct{}
	// Changes receives a value whenever any published field changed.
	Changes() <-chan struct{}
}

// MonitorBackend adapts a volume monitor to Backend.
type MonitorBackend struct {
	mon     *monitor.Monitor
	changes chan struct{}

	mu      sync.Mutex
	cancels []func()
}

// NewMonitorBackend subscribes to every published value of mon.
func NewMonitorBackend(mon *monitor.Monitor) *MonitorBackend {
	b := &MonitorBackend{
		mon:     mon,
		changes: make(chan struct{}, 1),
	}
	b.cancels = []func(){
		mon.VolumePercentage().Subscribe(func(int) { b.notify() }),
		mon.Muted().Subscribe(func(bool) { b.notify() }),
		mon.CurrentDevice().Subscribe(func(*model.AudioDevice) { b.notify() }),
		mon.AudioDevices().Subscribe(func([]model.AudioDevice) { b.notify() }),
	}
	return b
}

// notify coalesces bursts into one pending signal.
func (b *MonitorBackend) notify() {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

// Status reads the published values.
func (b *MonitorBackend) Status() output.Status {
	return StatusOf(b.mon)
}

// StatusOf builds a status from the values mon has published. The segment
// label uses the unrounded scalar so it matches the HUD.
func StatusOf(mon *monitor.Monitor) output.Status {
	dev := lo.FromPtr(mon.CurrentDevice().Get())
	scalar, ok := mon.Scalar()
	if !ok {
		scalar = model.ScalarFromPercentage(mon.VolumePercentage().Get())
	}
	return output.NewStatus(dev, scalar, mon.Muted().Get(), mon.Supported(), time.Now())
}

func (b *MonitorBackend) Devices() []model.AudioDevice {
	return b.mon.AudioDevices().Get()
}

func (b *MonitorBackend) SetVolume(scalar float64) <-chan struct{} {
	return b.mon.SetVolume(scalar)
}

func (b *MonitorBackend) SetMuted(muted bool) <-chan struct{} {
	return b.mon.SetMuted(muted)
}

func (b *MonitorBackend) Changes() <-chan struct{} {
	return b.changes
}

// Close cancels the subscriptions.
func (b *MonitorBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}
