package audio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/euxx/volume-grid-sub001/internal/audio"
	"github.com/euxx/volume-grid-sub001/internal/audio/audiotest"
	"github.com/euxx/volume-grid-sub001/internal/model"
)

const speakers model.DeviceID = 42

func newAdapter(t *testing.T, dev *audiotest.Device) (*audio.Adapter, *audiotest.HAL) {
	t.Helper()
	hal := audiotest.NewHAL()
	if dev != nil {
		hal.AddDevice(speakers, dev)
	}
	return audio.NewAdapter(hal, nil), hal
}

func TestDefaultOutputDevice_NoDevice(t *testing.T) {
	a, _ := newAdapter(t, nil)
	assert.Equal(t, model.NoDevice, a.DefaultOutputDevice())
}

func TestDetectVolumeElements(t *testing.T) {
	tests := []struct {
		name   string
		volume map[audio.Element]float64
		want   audio.ElementSet
	}{
		{"aggregate only", map[audio.Element]float64{0: 0.5}, audio.ElementSet{audio.ElementMain}},
		{"aggregate wins over channels", map[audio.Element]float64{0: 0.5, 1: 0.5, 2: 0.5}, audio.ElementSet{audio.ElementMain}},
		{"stereo channels", map[audio.Element]float64{1: 0.2, 2: 0.4}, audio.ElementSet{1, 2}},
		{"left only", map[audio.Element]float64{1: 0.2}, audio.ElementSet{1}},
		{"no volume control", map[audio.Element]float64{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newAdapter(t, &audiotest.Device{Name: "Speakers", Volume: tt.volume})
			assert.Equal(t, tt.want, a.DetectVolumeElements(speakers))
		})
	}
}

func TestDetectMuteElements_RequiresReadableProperty(t *testing.T) {
	a, _ := newAdapter(t, &audiotest.Device{
		Name:         "Interface",
		Muted:        map[audio.Element]bool{0: false, 1: false, 2: false},
		FailMuteRead: map[audio.Element]bool{0: true},
	})

	// The aggregate key exists but cannot be read, so the per-channel elements are used.
	assert.Equal(t, audio.ElementSet{1, 2}, a.DetectMuteElements(speakers))
}

func TestDetectElements_NoDevice(t *testing.T) {
	a, _ := newAdapter(t, nil)
	assert.Nil(t, a.DetectVolumeElements(model.NoDevice))
	assert.Nil(t, a.DetectMuteElements(model.NoDevice))
}

func TestCurrentVolume_Averages(t *testing.T) {
	a, _ := newAdapter(t, &audiotest.Device{
		Name:   "Speakers",
		Volume: map[audio.Element]float64{1: 0.2, 2: 0.4},
	})

	v, ok := a.CurrentVolume(speakers, audio.ElementSet{1, 2})
	require.True(t, ok)
	assert.InDelta(t, 0.3, v, 1e-12)
}

func TestCurrentVolume_ExcludesFailedReads(t *testing.T) {
	a, _ := newAdapter(t, &audiotest.Device{
		Name:           "Speakers",
		Volume:         map[audio.Element]float64{1: 0.2, 2: 0.8},
		FailVolumeRead: map[audio.Element]bool{1: true},
	})

	v, ok := a.CurrentVolume(speakers, audio.ElementSet{1, 2})
	require.True(t, ok)
	assert.InDelta(t, 0.8, v, 1e-12)
}

func TestCurrentVolume_AllFail(t *testing.T) {
	a, _ := newAdapter(t, &audiotest.Device{
		Name:           "Speakers",
		Volume:         map[audio.Element]float64{1: 0.2},
		FailVolumeRead: map[audio.Element]bool{1: true},
	})

	_, ok := a.CurrentVolume(speakers, audio.ElementSet{1})
	assert.False(t, ok)

	_, ok = a.CurrentVolume(speakers, nil)
	assert.False(t, ok)
}

func TestSetVolume_RoundTrip(t *testing.T) {
	a, _ := newAdapter(t, &audiotest.Device{
		Name:   "Speakers",
		Volume: map[audio.Element]float64{1: 0, 2: 0},
	})
	elems := audio.ElementSet{1, 2}

	for _, s := range []float64{0, 0.125, 0.3, 0.5, 0.984375, 1} {
		require.True(t, a.SetVolume(s, speakers, elems))
		v, ok := a.CurrentVolume(speakers, elems)
		require.True(t, ok)
		assert.InDelta(t, s, v, 1e-9)
	}
}

func TestSetVolume_ClampsAndPartialSuccess(t *testing.T) {
	a, hal := newAdapter(t, &audiotest.Device{
		Name:            "Speakers",
		Volume:          map[audio.Element]float64{1: 0.5, 2: 0.5},
		FailVolumeWrite: map[audio.Element]bool{2: true},
	})

	assert.True(t, a.SetVolume(1.5, speakers, audio.ElementSet{1, 2}))
	assert.Equal(t, 1.0, hal.Device(speakers).Volume[1])
	assert.Equal(t, 0.5, hal.Device(speakers).Volume[2])

	hal.Update(speakers, func(d *audiotest.Device) { d.FailVolumeWrite[1] = true })
	assert.False(t, a.SetVolume(0.2, speakers, audio.ElementSet{1, 2}))
	assert.False(t, a.SetVolume(0.2, model.NoDevice, audio.ElementSet{1}))
}

func TestMuteState(t *testing.T) {
	tests := []struct {
		name      string
		muted     map[audio.Element]bool
		failRead  map[audio.Element]bool
		wantMuted bool
		wantOK    bool
	}{
		{"none muted", map[audio.Element]bool{1: false, 2: false}, nil, false, true},
		{"any muted", map[audio.Element]bool{1: false, 2: true}, nil, true, true},
		{"failed element ignored", map[audio.Element]bool{1: true, 2: false}, map[audio.Element]bool{1: true}, false, true},
		{"all fail", map[audio.Element]bool{1: true}, map[audio.Element]bool{1: true}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newAdapter(t, &audiotest.Device{Name: "Speakers", Muted: tt.muted, FailMuteRead: tt.failRead})
			elems := make(audio.ElementSet, 0, len(tt.muted))
			for _, e := range []audio.Element{1, 2} {
				if _, ok := tt.muted[e]; ok {
					elems = append(elems, e)
				}
			}
			muted, ok := a.MuteState(speakers, elems)
			assert.Equal(t, tt.wantMuted, muted)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestSetMute_AnySuccess(t *testing.T) {
	a, hal := newAdapter(t, &audiotest.Device{
		Name:          "Speakers",
		Muted:         map[audio.Element]bool{1: true, 2: true},
		FailMuteWrite: map[audio.Element]bool{1: true},
	})

	assert.True(t, a.SetMute(false, speakers, audio.ElementSet{1, 2}))
	assert.True(t, hal.Device(speakers).Muted[1])
	assert.False(t, hal.Device(speakers).Muted[2])
	assert.False(t, a.SetMute(false, speakers, audio.ElementSet{1}))
}

func TestAllDevicesAndName(t *testing.T) {
	a, hal := newAdapter(t, &audiotest.Device{Name: "Speakers"})
	hal.AddDevice(7, &audiotest.Device{Name: "Headphones"})

	devices := a.AllDevices()
	require.Len(t, devices, 2)
	assert.Equal(t, model.AudioDevice{ID: speakers, Name: "Speakers"}, devices[0])
	assert.Equal(t, model.AudioDevice{ID: 7, Name: "Headphones"}, devices[1])

	name, ok := a.DeviceName(7)
	assert.True(t, ok)
	assert.Equal(t, "Headphones", name)

	_, ok = a.DeviceName(99)
	assert.False(t, ok)
}

func TestSubscribe_DeliversNotifications(t *testing.T) {
	a, hal := newAdapter(t, &audiotest.Device{Name: "Speakers", Volume: map[audio.Element]float64{0: 0.5}})
	ch := make(chan audio.Notification, 1)

	require.NoError(t, a.Subscribe(speakers, audio.PropertyVolume, audio.ElementMain, ch))
	assert.Error(t, a.Subscribe(speakers, audio.PropertyVolume, audio.ElementMain, ch))

	require.True(t, hal.Fire(speakers, audio.PropertyVolume, audio.ElementMain))
	// A full channel drops instead of blocking the backend thread.
	require.True(t, hal.Fire(speakers, audio.PropertyVolume, audio.ElementMain))

	note := <-ch
	assert.Equal(t, audio.Notification{Device: speakers, Property: audio.PropertyVolume, Element: audio.ElementMain}, note)
	assert.Empty(t, ch)

	require.NoError(t, a.Unsubscribe(speakers, audio.PropertyVolume, audio.ElementMain))
	assert.ErrorIs(t, a.Unsubscribe(speakers, audio.PropertyVolume, audio.ElementMain), audio.ErrNotListening)
}

func TestElementSet(t *testing.T) {
	assert.Equal(t, audio.ElementSet{audio.ElementMain}, audio.NewElementSet(2, audio.ElementMain, 1))
	assert.Equal(t, audio.ElementSet{1, 2}, audio.NewElementSet(1, 2, 1))
	assert.Nil(t, audio.NewElementSet())
	assert.True(t, audio.ElementSet{audio.ElementMain}.IsAggregate())
	assert.False(t, audio.ElementSet{1}.IsAggregate())
	assert.Equal(t, "[main]", audio.ElementSet{audio.ElementMain}.String())
	assert.Equal(t, "[1 2]", audio.ElementSet{1, 2}.String())

	orig := audio.ElementSet{1, 2}
	clone := orig.Clone()
	clone[0] = 9
	assert.Equal(t, audio.Element(1), orig[0])
}
