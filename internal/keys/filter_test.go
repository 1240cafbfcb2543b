package keys

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTap struct {
	mu      sync.Mutex
	sink    func(RawEvent)
	err     error
	starts  int
	stops   int
	running bool
}

func (t *fakeTap) Start(sink func(RawEvent)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.starts++
	if t.err != nil {
		return t.err
	}
	t.sink = sink
	t.running = true
	return nil
}

func (t *fakeTap) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stops++
	t.running = false
}

func (t *fakeTap) send(ev RawEvent) {
	t.mu.Lock()
	sink := t.sink
	t.mu.Unlock()
	if sink != nil {
		sink(ev)
	}
}

// payload packs a media-key data1 value.
func payload(code KeyCode, state uint8, repeat bool) int64 {
	flags := uint32(state) << 8
	if repeat {
		flags |= 1
	}
	return int64(uint32(code)<<16 | flags)
}

func keyDown(code KeyCode, ts time.Duration) RawEvent {
	return RawEvent{Subtype: SubtypeAuxControlButtons, Data1: payload(code, stateKeyDown, false), Timestamp: ts}
}

func newTestFilter(t *testing.T) (*Filter, *fakeTap, *fakeTap, *int) {
	t.Helper()
	passive, active := &fakeTap{}, &fakeTap{}
	f := NewFilter(Options{Passive: passive, Active: active})
	calls := new(int)
	require.NoError(t, f.Start(func() { *calls++ }))
	return f, passive, active, calls
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		ev     RawEvent
		want   Key
		wantOK bool
	}{
		{
			name:   "volume up down",
			ev:     RawEvent{Subtype: 8, Data1: 0x00000A00},
			want:   Key{Code: KeyVolumeUp, Flags: 0x0A00, State: 0x0A},
			wantOK: true,
		},
		{
			name:   "volume down up",
			ev:     RawEvent{Subtype: 8, Data1: 0x00010B00},
			want:   Key{Code: KeyVolumeDown, Flags: 0x0B00, State: 0x0B},
			wantOK: true,
		},
		{
			name:   "mute repeat",
			ev:     RawEvent{Subtype: 8, Data1: 0x00070A01},
			want:   Key{Code: KeyMute, Flags: 0x0A01, State: 0x0A, Repeat: true},
			wantOK: true,
		},
		{
			name:   "other subtype",
			ev:     RawEvent{Subtype: 7, Data1: 0x00000A00},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.ev)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyCode(t *testing.T) {
	assert.True(t, KeyVolumeUp.Volume())
	assert.True(t, KeyVolumeDown.Volume())
	assert.True(t, KeyMute.Volume())
	assert.False(t, KeyCode(16).Volume())
	assert.Equal(t, "mute", KeyMute.String())
	assert.Equal(t, "key-16", KeyCode(16).String())
}

func TestFilter_AcceptsKeyDownOnly(t *testing.T) {
	f, passive, _, calls := newTestFilter(t)
	defer f.Stop()

	passive.send(RawEvent{Subtype: 8, Data1: payload(KeyVolumeUp, stateKeyUp, false), Timestamp: time.Second})
	assert.Equal(t, 0, *calls)

	passive.send(RawEvent{Subtype: 8, Data1: payload(KeyCode(16), stateKeyDown, false), Timestamp: 2 * time.Second})
	assert.Equal(t, 0, *calls, "play/pause is not a volume key")

	passive.send(RawEvent{Subtype: 3, Data1: payload(KeyVolumeUp, stateKeyDown, false), Timestamp: 3 * time.Second})
	assert.Equal(t, 0, *calls)

	passive.send(keyDown(KeyVolumeUp, 4*time.Second))
	passive.send(keyDown(KeyVolumeDown, 5*time.Second))
	passive.send(keyDown(KeyMute, 6*time.Second))
	assert.Equal(t, 3, *calls)
}

func TestFilter_DebouncesAcrossTaps(t *testing.T) {
	f, passive, active, calls := newTestFilter(t)
	defer f.Stop()

	ev := keyDown(KeyVolumeUp, 10*time.Second)
	passive.send(ev)
	active.send(ev)
	assert.Equal(t, 1, *calls, "same press through both taps")

	// Inside the window.
	active.send(keyDown(KeyVolumeUp, 10*time.Second+50*time.Microsecond))
	assert.Equal(t, 1, *calls)

	// After the window.
	active.send(keyDown(KeyVolumeUp, 10*time.Second+5*time.Millisecond))
	assert.Equal(t, 2, *calls)
}

func TestFilter_DifferentPayloadIsNotDuplicate(t *testing.T) {
	f, passive, _, calls := newTestFilter(t)
	defer f.Stop()

	passive.send(keyDown(KeyVolumeUp, time.Second))
	passive.send(keyDown(KeyVolumeDown, time.Second))
	assert.Equal(t, 2, *calls)
}

func TestFilter_ConfigurableWindow(t *testing.T) {
	f, passive, _, calls := newTestFilter(t)
	defer f.Stop()

	f.SetDebounceWindow(100 * time.Millisecond)
	passive.send(keyDown(KeyMute, time.Second))
	passive.send(keyDown(KeyMute, time.Second+40*time.Millisecond))
	passive.send(keyDown(KeyMute, time.Second+300*time.Millisecond))
	assert.Equal(t, 2, *calls)

	f.SetDebounceWindow(0)
	assert.Equal(t, DefaultDebounceWindow, f.DebounceWindow())
}

func TestFilter_StopClearsDebounceState(t *testing.T) {
	passive, active := &fakeTap{}, &fakeTap{}
	f := NewFilter(Options{Passive: passive, Active: active})

	calls := 0
	require.NoError(t, f.Start(func() { calls++ }))
	ev := keyDown(KeyVolumeUp, time.Second)
	passive.send(ev)

	f.Stop()
	assert.False(t, f.Started())
	assert.False(t, passive.running)
	assert.False(t, active.running)

	passive.send(ev)
	assert.Equal(t, 1, calls, "events after Stop are ignored")

	require.NoError(t, f.Start(func() { calls++ }))
	passive.send(ev)
	assert.Equal(t, 2, calls, "a restarted filter starts from a clean slate")
	f.Stop()
}

func TestFilter_StartTwice(t *testing.T) {
	f, _, _, _ := newTestFilter(t)
	defer f.Stop()
	assert.ErrorIs(t, f.Start(func() {}), ErrAlreadyStarted)
}

func TestFilter_OneTapFailing(t *testing.T) {
	passive := &fakeTap{err: errors.New("denied")}
	active := &fakeTap{}
	f := NewFilter(Options{Passive: passive, Active: active})

	calls := 0
	require.NoError(t, f.Start(func() { calls++ }))
	active.send(keyDown(KeyVolumeDown, time.Second))
	assert.Equal(t, 1, calls)
	f.Stop()
}

func TestFilter_BothTapsFailing(t *testing.T) {
	passive := &fakeTap{err: errors.New("denied")}
	active := &fakeTap{err: errors.New("denied")}
	f := NewFilter(Options{Passive: passive, Active: active})

	err := f.Start(func() {})
	require.Error(t, err)
	assert.False(t, f.Started())
}

func TestFilter_HandlerRunsOnUIQueue(t *testing.T) {
	var posted []func()
	passive, active := &fakeTap{}, &fakeTap{}
	f := NewFilter(Options{
		Passive: passive,
		Active:  active,
		UI:      queueFunc(func(fn func()) { posted = append(posted, fn) }),
	})

	calls := 0
	require.NoError(t, f.Start(func() { calls++ }))
	defer f.Stop()

	passive.send(keyDown(KeyMute, time.Second))
	assert.Equal(t, 0, calls)
	require.Len(t, posted, 1)
	posted[0]()
	assert.Equal(t, 1, calls)
}

type queueFunc func(func())

func (q queueFunc) Post(fn func()) { q(fn) }

func TestSignature_Duplicates(t *testing.T) {
	a := Signature{Timestamp: time.Second, Payload: 1}
	assert.True(t, a.Duplicates(Signature{Timestamp: time.Second, Payload: 1}, 0))
	assert.True(t, a.Duplicates(Signature{Timestamp: time.Second - 10*time.Microsecond, Payload: 1}, DefaultDebounceWindow))
	assert.False(t, a.Duplicates(Signature{Timestamp: time.Second, Payload: 2}, time.Hour))
	assert.False(t, a.Duplicates(Signature{Timestamp: 2 * time.Second, Payload: 1}, DefaultDebounceWindow))
}
