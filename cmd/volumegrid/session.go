package main

import (
	"fmt"

	"github.com/euxx/volume-grid-sub001/internal/adapter/output"
	"github.com/euxx/volume-grid-sub001/internal/audio"
	"github.com/euxx/volume-grid-sub001/internal/dispatch"
	"github.com/euxx/volume-grid-sub001/internal/monitor"
	"github.com/euxx/volume-grid-sub001/internal/tui"
)

// session is a volume monitor over the system audio backend for the
// lifetime of one command.
type session struct {
	mon    *monitor.Monitor
	worker *dispatch.Worker
	ui     *dispatch.Worker
}

// openSession seeds a monitor from the hardware. Hardware key taps are
// never installed from the CLI.
func openSession() (*session, error) {
	hal, err := audio.NewSystemHAL()
	if err != nil {
		return nil, fmt.Errorf("failed to open audio backend: %w", err)
	}
	adapter := audio.NewAdapter(hal, logger)

	s := &session{
		worker: dispatch.NewWorker("audio", logger),
		ui:     dispatch.NewWorker("ui", logger),
	}
	dispatch.Do(s.ui, func() {
		s.mon = monitor.New(adapter, noKeys{}, monitor.Options{
			Worker: s.worker,
			UI:     s.ui,
			Logger: logger,
		})
	})
	return s, nil
}

// listen installs the hardware listeners.
func (s *session) listen() {
	dispatch.Do(s.worker, s.mon.StartListening)
}

func (s *session) status() output.Status {
	return tui.StatusOf(s.mon)
}

// Close removes the listeners and drains both queues.
func (s *session) Close() {
	dispatch.Do(s.worker, s.mon.Close)
	s.worker.Close()
	s.ui.Close()
}

type noKeys struct{}

func (noKeys) Start(func()) error { return nil }
func (noKeys) Stop()              {}
