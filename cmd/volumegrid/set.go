package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/euxx/volume-grid-sub001/internal/adapter/output"
	"github.com/euxx/volume-grid-sub001/internal/hud"
	"github.com/euxx/volume-grid-sub001/internal/model"
)

// errUnsupported is returned when the default device has no software volume.
var errUnsupported = errors.New("the default output device does not support volume control")

var setOpts struct {
	segments bool
	quiet    bool
}

var setCmd = &cobra.Command{
	Use:   "set <volume>",
	Short: "Set the volume of the default output device",
	Long: `Set the volume of the default output device.

The volume is a percentage, or a number of segments with --segments. A
leading + or - makes it relative; put relative decreases after "--".
Segment values snap to the nearest quarter segment. Any volume above zero
unmutes the device.

Examples:
  volumegrid set 50
  volumegrid set +10
  volumegrid set -- -10
  volumegrid set --segments 8.5
  volumegrid set --segments +0.25`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

var upCmd = &cobra.Command{
	Use:   "up [segments]",
	Short: "Raise the volume by whole or quarter segments (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(args, 1)
	},
}

var downCmd = &cobra.Command{
	Use:   "down [segments]",
	Short: "Lower the volume by whole or quarter segments (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(args, -1)
	},
}

func init() {
	rootCmd.AddCommand(setCmd, upCmd, downCmd)

	setCmd.Flags().BoolVar(&setOpts.segments, "segments", false,
		"Interpret the volume as segments of 16")
	for _, c := range []*cobra.Command{setCmd, upCmd, downCmd} {
		c.Flags().BoolVarP(&setOpts.quiet, "quiet", "q", false,
			"Do not print the resulting status")
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	cur := s.status()
	if !cur.Supported {
		return errUnsupported
	}

	target, err := parseTarget(args[0], cur.Scalar, setOpts.segments)
	if err != nil {
		return err
	}
	return apply(s, target)
}

func runStep(args []string, sign float64) error {
	steps := 1.0
	if len(args) > 0 {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil || v < 0 || math.IsInf(v, 0) {
			return fmt.Errorf("invalid segment count %q", args[0])
		}
		steps = v
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
	return apply(s, stepSegments(cur.Scalar, sign*steps))
}

// apply writes target and prints the published result.
func apply(s *session, target float64) error {
	<-s.mon.SetVolume(target)
	logger.Debug("volume set", "scalar", target)

	if setOpts.quiet {
		return nil
	}
	return output.NewPlainFormatter(output.DefaultFormatterOptions()).FormatStatus(os.Stdout, s.status())
}

// parseTarget resolves a volume argument against the current scalar.
func parseTarget(arg string, current float64, segments bool) (float64, error) {
	arg = strings.TrimSpace(arg)
	relative := strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-")

	v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid volume %q", arg)
	}

	if segments {
		v /= hud.SegmentCount
	} else {
		v /= 100
	}
	if relative {
		v += current
	}
	if segments {
		return hud.QuarterSegments(v) / hud.SegmentCount, nil
	}
	return model.Clamp(v), nil
}

// stepSegments moves current by delta segments on the quarter segment grid.
func stepSegments(current, delta float64) float64 {
	return hud.QuarterSegments(hud.QuarterSegments(current)/hud.SegmentCount+delta/hud.SegmentCount) / hud.SegmentCount
}
