package main

import (
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"calgen/internal/definition"
	"calgen/internal/index"
	"calgen/internal/model"
	"calgen/internal/pipeline"
)

func newListCmd(g *globalFlags) *cobra.Command {
	var rules bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resolved occurrences, or the parsed rules with --rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			groups, err := definitions(cfg)
			if err != nil {
				return err
			}
			names, err := cfg.NameTable()
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)

			if rules {
				renderRules(t, groups, names)
			} else {
				renderOccurrences(t, groups, pipeline.Years(cfg.Year, cfg.Years, time.Now()), names)
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&rules, "rules", false, "List groups and their rules instead of dates")
	return cmd
}

func renderOccurrences(t table.Writer, groups []definition.Group, years []int, names model.NameTable) {
	t.AppendHeader(table.Row{"Date", "Weekday", "Group", "Title"})
	total := 0
	for _, year := range years {
		for _, occ := range index.Build(groups, year).Occurrences() {
			t.AppendRow(table.Row{occ.Date.String(), names.Weekday(occ.Date.Weekday()), occ.Group, occ.Title})
			total++
		}
	}
	t.AppendFooter(table.Row{"", "", "Total", strconv.Itoa(total)})
}

func renderRules(t table.Writer, groups []definition.Group, names model.NameTable) {
	t.AppendHeader(table.Row{"Group", "Class", "Line", "Recurrence", "Title"})
	for _, g := range groups {
		for _, r := range g.Rules {
			t.AppendRow(table.Row{g.Title, g.ID.CSSClass(), r.Line, definition.FormatRecurrence(r.Recurrence, names), r.Title})
		}
	}
}
