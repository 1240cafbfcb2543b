//go:build darwin && cgo

package keys

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework ApplicationServices
#import <Cocoa/Cocoa.h>
#include <stdint.h>
#include <stdlib.h>

extern void vgKeyEvent(uintptr_t token, int subtype, long data1, double timestamp);

typedef struct {
	CFMachPortRef port;
	CFRunLoopSourceRef source;
	uintptr_t token;
	int stopping;
} vgTap;

static CGEventRef vgTapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *info) {
	vgTap *tap = (vgTap *)info;
	if (type == kCGEventTapDisabledByTimeout || type == kCGEventTapDisabledByUserInput) {
		CGEventTapEnable(tap->port, true);
		return event;
	}
	if (type != (CGEventType)NSEventTypeSystemDefined) {
		return event;
	}
	@autoreleasepool {
		NSEvent *ns = [NSEvent eventWithCGEvent:event];
		if (ns != nil) {
			vgKeyEvent(tap->token, (int)[ns subtype], (long)[ns data1], [ns timestamp]);
		}
	}
	return event;
}

static vgTap *vgTapCreate(int active, uintptr_t token) {
	vgTap *tap = calloc(1, sizeof(vgTap));
	if (tap == NULL) {
		return NULL;
	}
	tap->token = token;
	CGEventTapOptions opts = active ? kCGEventTapOptionDefault : kCGEventTapOptionListenOnly;
	tap->port = CGEventTapCreate(kCGSessionEventTap, kCGHeadInsertEventTap, opts,
		CGEventMaskBit(NSEventTypeSystemDefined), vgTapCallback, tap);
	if (tap->port == NULL) {
		free(tap);
		return NULL;
	}
	tap->source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap->port, 0);
	return tap;
}

// vgTapRun services the tap on the calling thread until vgTapStop.
static void vgTapRun(vgTap *tap) {
	CFRunLoopRef loop = CFRunLoopGetCurrent();
	CFRunLoopAddSource(loop, tap->source, kCFRunLoopCommonModes);
	CGEventTapEnable(tap->port, true);
	while (!__atomic_load_n(&tap->stopping, __ATOMIC_ACQUIRE)) {
		CFRunLoopRunInMode(kCFRunLoopDefaultMode, 0.25, false);
	}
	CGEventTapEnable(tap->port, false);
	CFRunLoopRemoveSource(loop, tap->source, kCFRunLoopCommonModes);
}

static void vgTapStop(vgTap *tap) {
	__atomic_store_n(&tap->stopping, 1, __ATOMIC_RELEASE);
}

static void vgTapFree(vgTap *tap) {
	CFMachPortInvalidate(tap->port);
	CFRelease(tap->source);
	CFRelease(tap->port);
	free(tap);
}
*/
import "C"

import (
	"errors"
	"log/slog"
	"runtime"
	"sync"
)

// ErrTapUnavailable is returned when the system refuses an event tap, usually
// because the process lacks the accessibility permission.
var ErrTapUnavailable = errors.New("event tap unavailable (accessibility permission required)")

type systemTap struct {
	mode   TapMode
	logger *slog.Logger

	mu    sync.Mutex
	tap   *C.vgTap
	token uintptr
	done  chan struct{}
}

// NewTap returns a CGEventTap for system-defined events.
func NewTap(mode TapMode, logger *slog.Logger) Tap {
	if logger == nil {
		logger = slog.Default()
	}
	return &systemTap{mode: mode, logger: logger}
}

func (t *systemTap) Start(sink func(RawEvent)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tap != nil {
		return nil
	}

	active := 0
	if t.mode == TapActive {
		active = 1
	}
	token := registerSink(sink)
	created := make(chan *C.vgTap, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		// The run loop belongs to the thread that created the tap.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		tap := C.vgTapCreate(C.int(active), C.uintptr_t(token))
		created <- tap
		if tap == nil {
			return
		}
		C.vgTapRun(tap)
		C.vgTapFree(tap)
	}()

	tap := <-created
	if tap == nil {
		<-done
		unregisterSink(token)
		return ErrTapUnavailable
	}

	t.tap = tap
	t.token = token
	t.done = done
	t.logger.Debug("event tap installed", "mode", t.mode)
	return nil
}

func (t *systemTap) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tap == nil {
		return
	}

	C.vgTapStop(t.tap)
	<-t.done
	unregisterSink(t.token)
	t.tap = nil
	t.done = nil
	t.logger.Debug("event tap removed", "mode", t.mode)
}
