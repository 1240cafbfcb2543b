package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/euxx/volume-grid-sub001/internal/adapter/output"
)

var muteCmd = &cobra.Command{
	Use:       "mute [on|off|toggle]",
	Short:     "Mute or unmute the default output device (default toggle)",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE:      runMute,
}

func init() {
	rootCmd.AddCommand(muteCmd)
}

func runMute(cmd *cobra.Command, args []string) error {
	action := "toggle"
	if len(args) > 0 {
		action = args[0]
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	cur := s.status()
	if !cur.Supported {
		return errUnsupported
	}

	muted, err := muteTarget(action, cur.Muted)
	if err != nil {
		return err
	}
	<-s.mon.SetMuted(muted)

	return output.NewPlainFormatter(output.DefaultFormatterOptions()).FormatStatus(os.Stdout, s.status())
}

// muteTarget resolves a mute action against the current flag.
func muteTarget(action string, current bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	case "toggle", "":
		return !current, nil
	default:
		return false, fmt.Errorf("invalid mute action %q, must be on, off or toggle", action)
	}
}
