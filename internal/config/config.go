package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"calgen/internal/model"
)

// LayoutConfig holds page capacities for the three page styles.
type LayoutConfig struct {
	// YearlyMonthsPerPage is 12 for a one-page year and 6 for half-years.
	YearlyMonthsPerPage int `yaml:"yearly_months_per_page" json:"yearly_months_per_page"`
	// YearlyRows is the number of weekday rows in the yearly overview.
	YearlyRows int `yaml:"yearly_rows" json:"yearly_rows"`

	DiaryCellsPerSection  int `yaml:"diary_cells_per_section" json:"diary_cells_per_section"`
	DiarySectionsPerMonth int `yaml:"diary_sections_per_month" json:"diary_sections_per_month"`
	DiarySectionsPerPage  int `yaml:"diary_sections_per_page" json:"diary_sections_per_page"`
}

// NamesConfig overrides the month and weekday names used for parsing and
// display. Missing lists keep the English defaults.
type NamesConfig struct {
	Months   []string `yaml:"months,omitempty" json:"months,omitempty"`
	Weekdays []string `yaml:"weekdays,omitempty" json:"weekdays,omitempty"`
}

// CaptureConfig drives headless Chromium output.
type CaptureConfig struct {
	Width      int  `yaml:"width" json:"width"`
	Height     int  `yaml:"height" json:"height"`
	TimeoutSec int  `yaml:"timeout_sec" json:"timeout_sec"`
	Landscape  bool `yaml:"landscape" json:"landscape"`
	// ExecPath points at the Chromium binary; empty searches PATH.
	ExecPath string `yaml:"exec_path,omitempty" json:"exec_path,omitempty" env:"CALGEN_CHROMIUM"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username" env:"CALGEN_BASIC_AUTH_USERNAME"`
	Password string `yaml:"password" json:"password" env:"CALGEN_BASIC_AUTH_PASSWORD"`
}

// Config is the top-level application configuration.
type Config struct {
	// Input is the event-definition file; "-" reads stdin.
	Input string `yaml:"input" json:"input" env:"CALGEN_INPUT"`

	// Year is the first year to lay out; 0 means the current year.
	Year int `yaml:"year" json:"year" env:"CALGEN_YEAR"`
	// Years is how many consecutive years to produce.
	Years int `yaml:"years" json:"years" env:"CALGEN_YEARS"`

	// Groups restricts output to these group titles; empty keeps all.
	Groups []string `yaml:"groups" json:"groups" env:"CALGEN_GROUPS" envSeparator:","`

	// Title and Language fill the document metadata of rendered pages.
	Title    string `yaml:"title" json:"title" env:"CALGEN_TITLE"`
	Language string `yaml:"language" json:"language" env:"CALGEN_LANGUAGE"`

	// OutputDir receives files written by `render` and the scheduler.
	OutputDir string `yaml:"output_dir" json:"output_dir" env:"CALGEN_OUTPUT_DIR"`
	// Outputs lists the page styles the scheduler renders, e.g. "yearly:pdf".
	Outputs []string `yaml:"outputs" json:"outputs"`

	// Listen is the HTTP listen address of `serve`.
	Listen string `yaml:"listen" json:"listen" env:"CALGEN_LISTEN"`

	// Refresh is a cron-style schedule for periodic re-rendering. Empty
	// disables the scheduler.
	Refresh string `yaml:"refresh" json:"refresh" env:"CALGEN_REFRESH"`

	LogLevel string `yaml:"log_level" json:"log_level" env:"CALGEN_LOG_LEVEL"`

	Layout  LayoutConfig  `yaml:"layout" json:"layout"`
	Names   NamesConfig   `yaml:"names" json:"names"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		Input:     "events.txt",
		Years:     1,
		Title:     "Calendar",
		Language:  "en",
		OutputDir: "./out",
		Outputs:   []string{"yearly:pdf", "diary:pdf"},
		Listen:    "127.0.0.1:8080",
		Refresh:   "0 3 * * *",
		LogLevel:  "info",
		Groups:    []string{},
	}
	cfg.Normalize()
	return cfg
}

// Normalize replaces zero or out-of-range values with defaults.
func (c *Config) Normalize() {
	if c.Input == "" {
		c.Input = "events.txt"
	}
	if c.Year < 0 {
		c.Year = 0
	}
	if c.Years <= 0 {
		c.Years = 1
	}
	if c.Title == "" {
		c.Title = "Calendar"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.OutputDir == "" {
		c.OutputDir = "./out"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Groups == nil {
		c.Groups = []string{}
	}

	l := &c.Layout
	if l.YearlyMonthsPerPage <= 0 || l.YearlyMonthsPerPage > 12 {
		l.YearlyMonthsPerPage = 12
	}
	if l.YearlyRows < 37 {
		l.YearlyRows = 37
	}
	if l.DiaryCellsPerSection <= 0 {
		l.DiaryCellsPerSection = 16
	}
	if l.DiarySectionsPerMonth <= 0 {
		l.DiarySectionsPerMonth = 2
	}
	if l.DiarySectionsPerPage <= 0 {
		l.DiarySectionsPerPage = 8
	}

	if c.Capture.Width <= 0 {
		c.Capture.Width = 1754
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = 1240
	}
	if c.Capture.TimeoutSec <= 0 {
		c.Capture.TimeoutSec = 30
	}
}

// Validate reports settings that Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := language.Parse(c.Language); err != nil {
		return fmt.Errorf("config: invalid language %q: %w", c.Language, err)
	}
	if _, err := c.NameTable(); err != nil {
		return err
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "") != (c.BasicAuth.Password == "") {
		return errors.New("config: basic_auth needs both username and password")
	}
	return nil
}

// LanguageTag is the parsed Language, falling back to English.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.English
	}
	return tag
}

// NameTable builds the name table from Names, starting from English.
func (c *Config) NameTable() (model.NameTable, error) {
	names := model.DefaultNames()
	if len(c.Names.Months) > 0 {
		if len(c.Names.Months) != len(names.Months) {
			return names, fmt.Errorf("config: names.months needs %d entries, got %d", len(names.Months), len(c.Names.Months))
		}
		copy(names.Months[:], trimAll(c.Names.Months))
	}
	if len(c.Names.Weekdays) > 0 {
		if len(c.Names.Weekdays) != len(names.Weekdays) {
			return names, fmt.Errorf("config: names.weekdays needs %d entries, got %d", len(names.Weekdays), len(c.Names.Weekdays))
		}
		copy(names.Weekdays[:], trimAll(c.Names.Weekdays))
	}
	if err := names.Validate(); err != nil {
		return names, fmt.Errorf("config: %w", err)
	}
	return names, nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// Load reads the YAML file at path and applies CALGEN_* environment
// overrides on top. A missing file is created with DefaultConfig (mode 0600)
// so the first run leaves an editable config behind.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, fmt.Errorf("config: write default %s: %w", path, err)
			}
			return withEnv(cfg)
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return withEnv(cfg)
}

func withEnv(cfg *Config) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save normalizes cfg and replaces path with its YAML form. The file is
// written to a temp file in the same directory and renamed into place, with
// mode 0600 since it may hold basic auth credentials.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calgen-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
