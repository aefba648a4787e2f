package main

import (
	"os"

	"github.com/spf13/cobra"

	"calgen/internal/config"
	"calgen/internal/definition"
	appLog "calgen/internal/log"
	"calgen/internal/pipeline"
)

// globalFlags are shared by every subcommand and override the config file.
type globalFlags struct {
	configPath string
	input      string
	year       int
	years      int
	groups     []string
	debug      bool
}

func defaultConfigPath() string {
	if p := os.Getenv("CALGEN_CONFIG"); p != "" {
		return p
	}
	return "calgen.yaml"
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "calgen",
		Short: "Generate printable yearly, monthly and diary calendars",
		Long: `calgen reads a plain-text file of recurring events (fixed dates, n-th
weekdays and Easter-relative days) and lays them out as yearly, half-year,
monthly or diary pages, rendered to HTML, PDF or PNG.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "calgen version %s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", defaultConfigPath(), "Path to config file (created with defaults if missing)")
	pf.StringVar(&g.input, "input", "", "Event definitions file, - for stdin (overrides config)")
	pf.IntVar(&g.year, "year", 0, "First year to lay out; 0 is the current year (overrides config)")
	pf.IntVar(&g.years, "years", 0, "Number of consecutive years (overrides config)")
	pf.StringSliceVar(&g.groups, "group", nil, "Only include these groups; repeatable (overrides config)")
	pf.BoolVar(&g.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newRenderCmd(g),
		newServeCmd(g),
		newListCmd(g),
		newICSCmd(g),
		newImportCmd(g),
		newVersionCmd(),
	)
	return root
}

// load reads the config file and applies flags set on cmd.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = g.input
	}
	if flags.Changed("year") {
		cfg.Year = g.year
	}
	if flags.Changed("years") {
		cfg.Years = g.years
	}
	if flags.Changed("group") {
		cfg.Groups = g.groups
	}
	cfg.Normalize()

	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	if g.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Debug("effective config",
		"config_path", g.configPath,
		"input", cfg.Input,
		"year", cfg.Year,
		"years", cfg.Years,
		"groups", len(cfg.Groups),
		"output_dir", cfg.OutputDir,
	)
	return cfg, nil
}

// definitions loads and selects the groups named by cfg.
func definitions(cfg *config.Config) ([]definition.Group, error) {
	names, err := cfg.NameTable()
	if err != nil {
		return nil, err
	}
	groups, err := pipeline.LoadDefinitions(cfg.Input, names)
	if err != nil {
		return nil, err
	}
	return pipeline.Select(groups, cfg.Groups)
}
