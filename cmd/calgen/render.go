package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"calgen/internal/pipeline"
)

func newRenderCmd(g *globalFlags) *cobra.Command {
	var (
		kinds  []string
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render calendar files into the output directory",
		Long: `Render writes <kind>-<year>.<format> files for every selected year.

Without --kind the outputs listed in the config file are rendered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.OutputDir = outDir
			}

			outputs, err := renderOutputs(cfg.Outputs, kinds, format)
			if err != nil {
				return err
			}
			groups, err := definitions(cfg)
			if err != nil {
				return err
			}
			b, err := pipeline.NewBuilder(cfg, nil)
			if err != nil {
				return err
			}

			years := pipeline.Years(cfg.Year, cfg.Years, time.Now())
			paths, err := b.RenderYears(cmd.Context(), groups, years, outputs, cfg.OutputDir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Page style: yearly, halfyear, monthly or diary; repeatable")
	cmd.Flags().StringVar(&format, "format", "pdf", "Output format: html, pdf, png or ics")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (overrides config)")
	return cmd
}

// renderOutputs combines --kind and --format, falling back to configured
// outputs when no kind is given.
func renderOutputs(configured, kinds []string, format string) ([]pipeline.Output, error) {
	if len(kinds) == 0 {
		return pipeline.ParseOutputs(configured)
	}
	f, err := pipeline.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	outputs := make([]pipeline.Output, 0, len(kinds))
	for _, k := range kinds {
		kind, err := pipeline.ParseKind(k)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, pipeline.Output{Kind: kind, Format: f})
	}
	return outputs, nil
}
