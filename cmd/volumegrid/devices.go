package main

import (
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/euxx/volume-grid-sub001/internal/adapter/output"
)

var devicesOpts formatOpts

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List output devices",
	Long: `List output devices. The default output device is marked.

Examples:
  volumegrid devices
  volumegrid devices --format dmenu | fuzzel -d`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesOpts.register(devicesCmd, output.FormatPlain)
}

func runDevices(cmd *cobra.Command, args []string) error {
	f, err := devicesOpts.formatter()
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	current := lo.FromPtr(s.mon.CurrentDevice().Get())
	return f.FormatDevices(os.Stdout, s.mon.AudioDevices().Get(), current.ID)
}
