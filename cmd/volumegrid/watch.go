package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/euxx/volume-grid-sub001/internal/adapter/output"
	"github.com/euxx/volume-grid-sub001/internal/model"
)

var watchOpts formatOpts

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print every volume change the HUD would show",
	Long: `Listen to the default output device and print a status line for every
change that would bring up the HUD, until interrupted.

Examples:
  volumegrid watch
  volumegrid watch --format json --compact | jq .percentage`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchOpts.register(watchCmd, output.FormatPlain)
}

func runWatch(cmd *cobra.Command, args []string) error {
	f, err := watchOpts.formatter()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	events, cancel := s.mon.HUDEvents(16)
	defer cancel()

	s.listen()
	go func() {
		if err := s.mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("monitor stopped", "error", err)
		}
	}()

	if err := f.FormatStatus(os.Stdout, s.status()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case hc := <-events:
			if err := f.FormatStatus(os.Stdout, eventStatus(hc, s.mon.CurrentDevice().Get())); err != nil {
				return err
			}
		}
	}
}

// eventStatus renders a HUD request. The device ID comes from the published
// device when its name matches.
func eventStatus(hc model.HUDContext, current *model.AudioDevice) output.Status {
	dev := model.AudioDevice{Name: hc.DeviceName}
	if cur := lo.FromPtr(current); cur.Name == hc.DeviceName {
		dev.ID = cur.ID
	}
	return output.NewStatus(dev, hc.VolumeScalar, hc.IsMuted, !hc.IsUnsupported, hc.CreatedAt)
}
