package main

import (
	"github.com/spf13/cobra"

	"github.com/euxx/volume-grid-sub001/internal/adapter/output"
)

// formatOpts are the output flags shared by the reporting commands.
type formatOpts struct {
	format   string
	template string
	noBar    bool
	showTime bool
	compact  bool
}

func (o *formatOpts) register(cmd *cobra.Command, def output.FormatType) {
	cmd.Flags().StringVarP(&o.format, "format", "f", string(def),
		"Output format (plain, json, yaml, dmenu, ids)")
	cmd.Flags().StringVar(&o.template, "template", "",
		"Custom Go template for plain status output")
	cmd.Flags().BoolVar(&o.noBar, "no-bar", false,
		"Omit the segment bar from plain output")
	cmd.Flags().BoolVar(&o.showTime, "time", false,
		"Show when the reading was taken")
	cmd.Flags().BoolVar(&o.compact, "compact", false,
		"Single-line JSON")
}

func (o *formatOpts) formatter() (output.Formatter, error) {
	format, err := output.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = o.template
	opts.ShowBar = !o.noBar
	opts.ShowTime = o.showTime
	opts.Compact = o.compact
	return output.NewFormatter(format, opts), nil
}
