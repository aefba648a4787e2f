package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"calgen/internal/ics"
	"calgen/internal/index"
	appLog "calgen/internal/log"
	"calgen/internal/pipeline"
)

func newICSCmd(g *globalFlags) *cobra.Command {
	var (
		recurring bool
		out       string
	)

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Export events as an iCalendar file",
		Long: `ics writes one all-day event per occurrence of the first selected year.

With --recurring, each rule is written once with an RRULE instead; rules
relative to Easter are still written per occurrence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			groups, err := definitions(cfg)
			if err != nil {
				return err
			}

			year := pipeline.Years(cfg.Year, 1, time.Now())[0]
			opts := ics.ExportOptions{Name: fmt.Sprintf("%s %d", cfg.Title, year)}

			var data []byte
			if recurring {
				data, err = ics.ExportRecurring(groups, year, opts)
			} else {
				data, err = ics.Export(index.Build(groups, year), opts)
			}
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			appLog.Info("ics written", "path", out, "year", year, "bytes", len(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&recurring, "recurring", false, "Write one recurring event per rule")
	cmd.Flags().StringVar(&out, "out", "", "Output file; empty or - writes to stdout")
	return cmd
}
