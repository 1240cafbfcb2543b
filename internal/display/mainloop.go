package display

import (
	"time"

	"github.com/diamondburned/gotk4/pkg/core/glib"

	"github.com/euxx/volume-grid-sub001/internal/dispatch"
	"github.com/euxx/volume-grid-sub001/internal/hud"
)

// MainLoop is the GLib main context as a dispatch queue and HUD scheduler.
// Posting is safe from any goroutine.
type MainLoop struct{}

var (
	_ dispatch.Queue = MainLoop{}
	_ hud.Scheduler  = MainLoop{}
)

// Post implements dispatch.Queue.
func (MainLoop) Post(fn func()) {
	glib.IdleAdd(func() bool {
		fn()
		return false
	})
}

// AfterFunc implements hud.Scheduler.
func (MainLoop) AfterFunc(d time.Duration, fn func()) hud.Timer {
	t := &sourceTimer{}
	t.source = glib.TimeoutAdd(uint(d.Milliseconds()), func() bool {
		if t.done {
			return false
		}
		t.done = true
		fn()
		return false
	})
	return t
}

// sourceTimer is only touched from the main loop.
type sourceTimer struct {
	source glib.SourceHandle
	done   bool
}

func (t *sourceTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	glib.SourceRemove(t.source)
	return true
}
