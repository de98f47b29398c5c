package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cord19-explorer/internal/utils"
)

// Global configuration structure.
type Global struct {
	// Pipeline inputs and artifacts
	InputPath   string `mapstructure:"input_path" yaml:"input_path"`
	CleanedPath string `mapstructure:"cleaned_path" yaml:"cleaned_path"`
	ChartPath   string `mapstructure:"chart_path" yaml:"chart_path"`
	SummaryPath string `mapstructure:"summary_path" yaml:"summary_path"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	Delimiter   string `mapstructure:"delimiter" yaml:"delimiter"`
	SampleRows  int    `mapstructure:"sample_rows" yaml:"sample_rows"`

	// Batch report limits
	TopJournals int `mapstructure:"top_journals" yaml:"top_journals"`
	TopSources  int `mapstructure:"top_sources" yaml:"top_sources"`
	TopWords    int `mapstructure:"top_words" yaml:"top_words"`

	// Dashboard
	DashboardAddr            string  `mapstructure:"dashboard_addr" yaml:"dashboard_addr"`
	DashboardTopSources      int     `mapstructure:"dashboard_top_sources" yaml:"dashboard_top_sources"`
	DashboardTopWords        int     `mapstructure:"dashboard_top_words" yaml:"dashboard_top_words"`
	DashboardDefaultJournals int     `mapstructure:"dashboard_default_journals" yaml:"dashboard_default_journals"`
	ExportRatePerSec         float64 `mapstructure:"export_rate_per_sec" yaml:"export_rate_per_sec"`
	ExportBurst              int     `mapstructure:"export_burst" yaml:"export_burst"`

	// Logging: "text" or "json"
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Global {
	return &Global{
		InputPath:                "metadata.csv",
		CleanedPath:              "cord19_cleaned.csv",
		ChartPath:                "cord19_analysis.svg",
		Delimiter:                ",",
		SampleRows:               5,
		TopJournals:              10,
		TopSources:               10,
		TopWords:                 15,
		DashboardAddr:            ":8501",
		DashboardTopSources:      8,
		DashboardTopWords:        20,
		DashboardDefaultJournals: 5,
		ExportRatePerSec:         2,
		ExportBurst:              5,
		LogFormat:                "text",
	}
}

// Dir returns ~/.cord19, the default config directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".cord19"), nil
}

// Path returns cfgFile, or the default config file location when empty.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.cord19/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from defaults, config file, .env and environment.
// Precedence: env (CORD19_*, including values from ./.env) > config file > defaults.
// Command-line flags are applied on top by the caller.
func Load(cfgFile string) (*Global, error) {
	// .env is optional; existing environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CORD19")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("input_path", d.InputPath)
	v.SetDefault("cleaned_path", d.CleanedPath)
	v.SetDefault("chart_path", d.ChartPath)
	v.SetDefault("summary_path", d.SummaryPath)
	v.SetDefault("sqlite_path", d.SQLitePath)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("top_journals", d.TopJournals)
	v.SetDefault("top_sources", d.TopSources)
	v.SetDefault("top_words", d.TopWords)
	v.SetDefault("dashboard_addr", d.DashboardAddr)
	v.SetDefault("dashboard_top_sources", d.DashboardTopSources)
	v.SetDefault("dashboard_top_words", d.DashboardTopWords)
	v.SetDefault("dashboard_default_journals", d.DashboardDefaultJournals)
	v.SetDefault("export_rate_per_sec", d.ExportRatePerSec)
	v.SetDefault("export_burst", d.ExportBurst)
	v.SetDefault("log_format", d.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// DelimiterRune returns the configured delimiter, or 0 to sniff from the file name.
func (c *Global) DelimiterRune() rune {
	switch c.Delimiter {
	case "", "auto":
		return 0
	case "tab", `\t`:
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}

// Set assigns a single key from its string form.
func (c *Global) Set(key, val string) error {
	setInt := func(dst *int) error {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	switch key {
	case "input_path":
		c.InputPath = val
	case "cleaned_path":
		c.CleanedPath = val
	case "chart_path":
		c.ChartPath = val
	case "summary_path":
		c.SummaryPath = val
	case "sqlite_path":
		c.SQLitePath = val
	case "delimiter":
		c.Delimiter = val
	case "sample_rows":
		return setInt(&c.SampleRows)
	case "top_journals":
		return setInt(&c.TopJournals)
	case "top_sources":
		return setInt(&c.TopSources)
	case "top_words":
		return setInt(&c.TopWords)
	case "dashboard_addr":
		c.DashboardAddr = val
	case "dashboard_top_sources":
		return setInt(&c.DashboardTopSources)
	case "dashboard_top_words":
		return setInt(&c.DashboardTopWords)
	case "dashboard_default_journals":
		return setInt(&c.DashboardDefaultJournals)
	case "export_rate_per_sec":
		f, perr := strconv.ParseFloat(val, 64)
		if perr != nil || f <= 0 {
			return fmt.Errorf("invalid float for export_rate_per_sec: %v", val)
		}
		c.ExportRatePerSec = f
	case "export_burst":
		return setInt(&c.ExportBurst)
	case "log_format":
		switch val {
		case "text", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
