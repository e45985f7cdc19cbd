package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultLogLevel    = "info"
	defaultDBPath      = "scatter.sqlite"
	defaultSummaryFile = "summary.csv"
	defaultCurvesFile  = "curves.csv"
)

var (
	errNoReceivers = errors.New("no receiver files configured")
	errInvalidCut  = errors.New("invalid cut")

	errDuplicateStation = errors.New("station loaded from more than one file")
)

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Storage  StorageConfig `yaml:"storage"`
	Input    InputConfig   `yaml:"input"`
	Output   OutputConfig  `yaml:"output"`
	Cuts     []CutConfig   `yaml:"cuts"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// Level returns the configured log level, falling back to info.
func (s Settings) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

// InputConfig lists the files to process
type InputConfig struct {
	Transmitter string   `yaml:"transmitter"` // Transmitter current file, optional
	Receivers   []string `yaml:"receivers"`   // Glob patterns of receiver files
	Workers     int      `yaml:"workers"`
}

// OutputConfig represents output settings
type OutputConfig struct {
	Directory     string `yaml:"directory"`
	SummaryFile   string `yaml:"summaryFile"`
	CurvesFile    string `yaml:"curvesFile"`
	WriteFiltered bool   `yaml:"writeFiltered"`
	MetricsFile   string `yaml:"metricsFile"` // Prometheus text format, optional
}

// CutConfig is an edit applied to one frequency of one station. A value cut
// sets Min and Max, an index cut sets From and To.
type CutConfig struct {
	Station   string   `yaml:"station"` // e.g. L12_S34_D1_C2_X
	Frequency float64  `yaml:"frequency"`
	Min       *float64 `yaml:"min"`
	Max       *float64 `yaml:"max"`
	From      *int     `yaml:"from"`
	To        *int     `yaml:"to"`
}

func (c *CutConfig) isValueCut() bool {
	return c.Min != nil && c.Max != nil
}

func (c *CutConfig) isIndexCut() bool {
	return c.From != nil && c.To != nil
}

func (c *CutConfig) validate() error {
	if c.Station == "" {
		return fmt.Errorf("%w: no station", errInvalidCut)
	}

	value := c.Min != nil || c.Max != nil
	index := c.From != nil || c.To != nil

	switch {
	case value && index:
		return fmt.Errorf("%w: %s mixes value and index bounds", errInvalidCut, c.Station)
	case value && !c.isValueCut():
		return fmt.Errorf("%w: %s needs both min and max", errInvalidCut, c.Station)
	case index && !c.isIndexCut():
		return fmt.Errorf("%w: %s needs both from and to", errInvalidCut, c.Station)
	case !value && !index:
		return fmt.Errorf("%w: %s has no bounds", errInvalidCut, c.Station)
	}
	return nil
}

// LoadConfig reads the YAML configuration at path, applies defaults and
// validates it.
func LoadConfig(path string) (*Config, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var c Config
	if err = yaml.Unmarshal(p, &c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	c.setDefaults()

	if err = c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaultLogLevel
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = defaultDBPath
	}
	if c.Output.SummaryFile == "" {
		c.Output.SummaryFile = defaultSummaryFile
	}
	if c.Output.CurvesFile == "" {
		c.Output.CurvesFile = defaultCurvesFile
	}
}

func (c *Config) validate() error {
	if len(c.Input.Receivers) == 0 {
		return errNoReceivers
	}

	var errs []error
	for i := range c.Cuts {
		if err := c.Cuts[i].validate(); err != nil {
			errs = append(errs, fmt.Errorf("cut %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
