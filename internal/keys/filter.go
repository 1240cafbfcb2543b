package keys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/euxx/volume-grid-sub001/internal/dispatch"
)

// DefaultDebounceWindow treats two deliveries of the same payload within
// 100µs of event time as one press. Both taps report the same physical press
// with the same timestamp; genuine repeats are milliseconds apart.
const DefaultDebounceWindow = 100 * time.Microsecond

// ErrAlreadyStarted is returned by Start on a running filter.
var ErrAlreadyStarted = errors.New("key filter already started")

// Options configures a Filter.
type Options struct {
	// UI is where the handler runs. Defaults to dispatch.Inline.
	UI dispatch.Queue
	// DebounceWindow defaults to DefaultDebounceWindow.
	DebounceWindow time.Duration
	// Passive and Active default to the platform taps.
	Passive Tap
	Active  Tap
	Logger  *slog.Logger
}

// Filter turns raw media-key events from two taps into handler calls, one per
// physical key-down of a volume key.
type Filter struct {
	ui      dispatch.Queue
	passive Tap
	active  Tap
	logger  *slog.Logger

	mu      sync.Mutex
	window  time.Duration
	started bool
	handler func()
	last    Signature
	hasLast bool
}

// NewFilter creates a stopped filter.
func NewFilter(opts Options) *Filter {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.UI == nil {
		opts.UI = dispatch.Inline{}
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultDebounceWindow
	}
	if opts.Passive == nil {
		opts.Passive = NewTap(TapPassive, opts.Logger)
	}
	if opts.Active == nil {
		opts.Active = NewTap(TapActive, opts.Logger)
	}
	return &Filter{
		ui:      opts.UI,
		passive: opts.Passive,
		active:  opts.Active,
		logger:  opts.Logger,
		window:  opts.DebounceWindow,
	}
}

// Start installs both taps. handler runs on the UI queue for every accepted
// key-down. Start fails only if neither tap could be installed.
func (f *Filter) Start(handler func()) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return ErrAlreadyStarted
	}
	f.started = true
	f.handler = handler
	f.hasLast = false
	f.mu.Unlock()

	errPassive := f.passive.Start(f.Process)
	if errPassive != nil {
		f.logger.Warn("passive key tap unavailable", "error", errPassive)
	}
	errActive := f.active.Start(f.Process)
	if errActive != nil {
		f.logger.Warn("active key tap unavailable", "error", errActive)
	}

	if errPassive != nil && errActive != nil {
		f.mu.Lock()
		f.started = false
		f.handler = nil
		f.mu.Unlock()
		return fmt.Errorf("start key taps: %w", errors.Join(errPassive, errActive))
	}

	f.logger.Debug("key filter started", "debounce", f.DebounceWindow())
	return nil
}

// Stop removes both taps and forgets the debounce signature.
func (f *Filter) Stop() {
	f.mu.Lock()
	if !f.started {
		f.mu.Unlock()
		return
	}
	f.started = false
	f.handler = nil
	f.hasLast = false
	f.last = Signature{}
	f.mu.Unlock()

	// Taps may be inside Process waiting for f.mu, so stop them unlocked.
	f.passive.Stop()
	f.active.Stop()
	f.logger.Debug("key filter stopped")
}

// Started reports whether the filter is running.
func (f *Filter) Started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

// DebounceWindow returns the current window.
func (f *Filter) DebounceWindow() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.window
}

// SetDebounceWindow changes the window; non-positive values restore the default.
func (f *Filter) SetDebounceWindow(d time.Duration) {
	if d <= 0 {
		d = DefaultDebounceWindow
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.window = d
}

// Process handles one raw event. It is safe to call from any goroutine.
func (f *Filter) Process(ev RawEvent) {
	key, ok := Decode(ev)
	if !ok || !key.Code.Volume() || !key.Down() {
		return
	}

	sig := Signature{Timestamp: ev.Timestamp, Payload: ev.Data1}

	f.mu.Lock()
	if !f.started {
		f.mu.Unlock()
		return
	}
	if f.hasLast && sig.Duplicates(f.last, f.window) {
		f.mu.Unlock()
		return
	}
	f.last = sig
	f.hasLast = true
	handler := f.handler
	f.mu.Unlock()

	f.logger.Debug("volume key pressed", "key", key.Code, "repeat", key.Repeat)
	if handler != nil {
		f.ui.Post(handler)
	}
}
