package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/euxx/volume-grid-sub001/internal/adapter/output"
)

var getOpts formatOpts

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the volume of the default output device",
	Long: `Print the volume of the default output device.

Examples:
  # Device, segment bar, segments and percentage
  volumegrid get

  # Percentage only
  volumegrid get --template '{{.Percentage}}'

  # Machine readable
  volumegrid get --format json`,
	Args: cobra.NoArgs,
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getOpts.register(getCmd, output.FormatPlain)
}

func runGet(cmd *cobra.Command, args []string) error {
	f, err := getOpts.formatter()
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	return f.FormatStatus(os.Stdout, s.status())
}
