package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/euxx/volume-grid-sub001/internal/audio"
	"github.com/euxx/volume-grid-sub001/internal/audio/audiotest"
	"github.com/euxx/volume-grid-sub001/internal/model"
	"github.com/euxx/volume-grid-sub001/internal/monitor"
)

type idleKeys struct{}

func (idleKeys) Start(func()) error { return nil }
func (idleKeys) Stop()              {}

func newMonitor(t *testing.T, devices map[model.DeviceID]*audiotest.Device, order ...model.DeviceID) *monitor.Monitor {
	t.Helper()
	hal := audiotest.NewHAL()
	for _, id := range order {
		hal.AddDevice(id, devices[id])
	}
	return monitor.New(audio.NewAdapter(hal, nil), idleKeys{}, monitor.Options{})
}

// pending drains the change channel and reports whether it held a signal.
func pending(b *MonitorBackend) bool {
	select {
	case <-b.Changes():
		return true
	default:
		return false
	}
}

func TestMonitorBackend_Status(t *testing.T) {
	mon := newMonitor(t, map[model.DeviceID]*audiotest.Device{
		42: {
			Name:   "Speakers",
			Volume: map[audio.Element]float64{audio.ElementMain: 0.5},
			Muted:  map[audio.Element]bool{audio.ElementMain: false},
		},
		7: {Name: "HDMI"},
	}, 42, 7)

	b := NewMonitorBackend(mon)
	defer b.Close()
	assert.True(t, pending(b), "subscribing publishes the current values")

	s := b.Status()
	assert.Equal(t, model.AudioDevice{ID: 42, Name: "Speakers"}, s.Device)
	assert.True(t, s.Supported)
	assert.Equal(t, 50, s.Percentage)
	assert.Len(t, b.Devices(), 2)

	<-b.SetVolume(0.75)
	assert.True(t, pending(b))
	assert.Equal(t, 75, b.Status().Percentage)

	<-b.SetMuted(true)
	assert.True(t, pending(b))
	assert.True(t, b.Status().Muted)
}

func TestStatusOf_MatchesHUDSegments(t *testing.T) {
	mon := newMonitor(t, map[model.DeviceID]*audiotest.Device{
		42: {
			Name:   "Speakers",
			Volume: map[audio.Element]float64{audio.ElementMain: 0.024},
		},
	}, 42)

	s := StatusOf(mon)
	assert.Equal(t, 2, s.Percentage)
	assert.Equal(t, 0.024, s.Scalar)
	assert.Equal(t, "0+2/4 / 16", s.Segments, "2% alone would round to a single quarter")
}

func TestMonitorBackend_Unsupported(t *testing.T) {
	mon := newMonitor(t, map[model.DeviceID]*audiotest.Device{
		7: {Name: "HDMI"},
	}, 7)

	b := NewMonitorBackend(mon)
	defer b.Close()

	s := b.Status()
	assert.False(t, s.Supported)
	assert.Equal(t, "Not Supported", s.Segments)
}

func TestMonitorBackend_CloseStopsSignals(t *testing.T) {
	mon := newMonitor(t, map[model.DeviceID]*audiotest.Device{
		42: {Name: "Speakers", Volume: map[audio.Element]float64{audio.ElementMain: 0.5}},
	}, 42)

	b := NewMonitorBackend(mon)
	require.True(t, pending(b))
	b.Close()
	b.Close()

	<-mon.SetVolume(0.2)
	assert.False(t, pending(b))
}
