// Package dispatch provides the execution contexts used by the monitor:
// a single background worker that owns every hardware call, and a UI queue
// abstraction implemented by the GTK main loop in the daemon.
package dispatch

import (
	"log/slog"
	"sync"
)

// Queue runs functions on a single execution context, in posting order.
type Queue interface {
	Post(fn func())
}

// Func adapts a plain function to a Queue.
type Func func(fn func())

// Post implements Queue.
func (f Func) Post(fn func()) { f(fn) }

// Inline runs every function immediately on the caller's goroutine.
type Inline struct{}

// Post implements Queue.
func (Inline) Post(fn func()) { fn() }

// Do posts fn to q and blocks until it has run.
// It deadlocks if called from q's own context for a serial queue.
func Do(q Queue, fn func()) {
	done := make(chan struct{})
	q.Post(func() {
		defer close(done)
		fn()
	})
	<-done
}

// Worker is a serial queue backed by one dedicated goroutine.
// Posting never blocks.
type Worker struct {
	name   string
	logger *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewWorker starts a worker goroutine.
func NewWorker(name string, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Worker{
		name:   name,
		logger: logger,
		done:   make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// Post implements Queue. Functions posted after Close are dropped.
func (w *Worker) Post(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.logger.Debug("worker closed, dropping task", "worker", w.name)
		return
	}
	w.queue = append(w.queue, fn)
	w.cond.Signal()
}

// Close runs the functions already queued, then stops the goroutine.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.queue) == 0 {
			w.mu.Unlock()
			return
		}
		fn := w.queue[0]
		w.queue[0] = nil
		w.queue = w.queue[1:]
		w.mu.Unlock()

		w.exec(fn)
	}
}

func (w *Worker) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker task panicked", "worker", w.name, "panic", r)
		}
	}()
	fn()
}
