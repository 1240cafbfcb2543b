//go:build darwin && cgo

package audio

/*
#include <stdint.h>
*/
import "C"

import (
	"sync"
	"sync/atomic"
)

// Listener callbacks are looked up by token rather than cgo.Handle: CoreAudio
// may deliver a callback after the listener was removed.
var (
	callbacksMu sync.RWMutex
	callbacks   = make(map[uintptr]func())
	nextToken   atomic.Uintptr
)

func registerCallback(fn func()) uintptr {
	token := nextToken.Add(1)
	callbacksMu.Lock()
	callbacks[token] = fn
	callbacksMu.Unlock()
	return token
}

func unregisterCallback(token uintptr) {
	callbacksMu.Lock()
	delete(callbacks, token)
	callbacksMu.Unlock()
}

//export vgAudioPropertyChanged
func vgAudioPropertyChanged(token C.uintptr_t) {
	callbacksMu.RLock()
	fn := callbacks[uintptr(token)]
	callbacksMu.RUnlock()
	if fn != nil {
		fn()
	}
}
