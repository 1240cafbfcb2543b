package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/euxx/volume-grid-sub001/internal/tui"
)

var tuiOpts struct {
	clipboard string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive volume control",
	Long: `Launch the interactive terminal volume control.

Key bindings:
  →/l, ←/h    One segment up/down
  L, H        Quarter segment up/down
  G, g        Full volume / silence
  m           Toggle mute
  tab         Output devices
  y, Y        Copy status as text / JSON
  ?           Show help
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&tuiOpts.clipboard, "clipboard", "",
		"Clipboard command (auto-detects pbcopy, wl-copy, xclip or xsel if empty)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.listen()
	go func() {
		if err := s.mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("monitor stopped", "error", err)
		}
	}()

	backend := tui.NewMonitorBackend(s.mon)
	defer backend.Close()

	return tui.Run(tui.RunOptions{
		Backend:          backend,
		ClipboardCommand: tuiOpts.clipboard,
	})
}
