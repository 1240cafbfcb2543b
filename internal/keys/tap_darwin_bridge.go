//go:build darwin && cgo

package keys

/*
#include <stdint.h>
*/
import "C"

import (
	"sync"
	"sync/atomic"
	"time"
)

var (
	sinksMu   sync.RWMutex
	sinks     = make(map[uintptr]func(RawEvent))
	nextToken atomic.Uintptr
)

func registerSink(sink func(RawEvent)) uintptr {
	token := nextToken.Add(1)
	sinksMu.Lock()
	sinks[token] = sink
	sinksMu.Unlock()
	return token
}

func unregisterSink(token uintptr) {
	sinksMu.Lock()
	delete(sinks, token)
	sinksMu.Unlock()
}

//export vgKeyEvent
func vgKeyEvent(token C.uintptr_t, subtype C.int, data1 C.long, timestamp C.double) {
	sinksMu.RLock()
	sink := sinks[uintptr(token)]
	sinksMu.RUnlock()
	if sink == nil {
		return
	}
	sink(RawEvent{
		Subtype:   int(subtype),
		Data1:     int64(data1),
		Timestamp: time.Duration(float64(timestamp) * float64(time.Second)),
	})
}
