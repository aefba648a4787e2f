package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"calgen/internal/definition"
	"calgen/internal/ics"
)

func newImportCmd(g *globalFlags) *cobra.Command {
	var (
		format string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "import <file|url|->",
		Short: "Convert an iCalendar or tab-separated list into event definitions",
		Long: `import prints a definitions group built from an external source.

Sources ending in .ics, or fetched over http(s), are read as iCalendar.
Anything else is read as lines of "DD-Month<TAB>Title".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			names, err := cfg.NameTable()
			if err != nil {
				return err
			}

			src := args[0]
			remote := strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
			if format == "" {
				format = "tsv"
				if remote || strings.EqualFold(filepath.Ext(src), ".ics") {
					format = "ics"
				}
			}

			var r io.Reader
			switch {
			case remote:
				body, err := ics.NewFetcher(fetchCacheDir()).Fetch(cmd.Context(), src)
				if err != nil {
					return err
				}
				r = bytes.NewReader(body)
			case src == "-":
				r = cmd.InOrStdin()
			default:
				f, err := os.Open(src)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var group definition.Group
			switch format {
			case "ics":
				group, err = ics.ImportICS(r, title)
			case "tsv":
				group, err = ics.ImportTSV(r, title, names)
			default:
				return fmt.Errorf("unknown import format %q", format)
			}
			if err != nil {
				return err
			}

			_, err = io.WriteString(cmd.OutOrStdout(), definition.Format([]definition.Group{group}, names))
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Source format: ics or tsv (guessed from the source when empty)")
	cmd.Flags().StringVar(&title, "title", "Imported", "Title of the generated group")
	return cmd
}

func fetchCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "calgen", "ics")
}
