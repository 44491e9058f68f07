package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/aegisops/aegis/internal/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory for the config file, relative to home.
	GlobalConfigDir = ".config/aegis"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. AEGIS_SIMULATION.
	EnvPrefix = "AEGIS"
)

// DefaultPath returns ~/.config/aegis/config.yaml, or "" if home is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// Find locates the config file:
// 1. Explicit path (from --config flag), which must exist
// 2. ~/.config/aegis/config.yaml
//
// Returns "" when no file exists and none was requested.
func Find(explicit string) (string, error) {
	if explicit != "" {
		explicit = ExpandTilde(explicit)
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct, or run 'aegis config init'")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	if path := DefaultPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// Load reads the config at path (or defaults when path is empty), applies
// AEGIS_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+displayPath(path))
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault finds and loads the config, falling back to defaults.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// newViper registers every key with its default so environment overrides
// reach Unmarshal even when no file sets them.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("simulation", d.Simulation)
	v.SetDefault("use_sudo", d.UseSudo)
	v.SetDefault("command_timeout", d.CommandTimeout.String())
	v.SetDefault("simulation_latency", d.SimulationLatency.String())
	v.SetDefault("dashboard.tick_rate", d.Dashboard.TickRate.String())
	v.SetDefault("dashboard.sample_every", d.Dashboard.SampleEvery)
	v.SetDefault("dashboard.history_size", d.Dashboard.HistorySize)
	v.SetDefault("dashboard.color", d.Dashboard.Color)
	v.SetDefault("dashboard.thresholds.warning", d.Dashboard.Thresholds.Warning)
	v.SetDefault("dashboard.thresholds.critical", d.Dashboard.Thresholds.Critical)
	return v
}

// fileConfig mirrors Config with durations as strings so the written YAML
// reads "30s" instead of nanoseconds.
type fileConfig struct {
	Version           int    `yaml:"version"`
	Simulation        string `yaml:"simulation"`
	UseSudo           bool   `yaml:"use_sudo"`
	CommandTimeout    string `yaml:"command_timeout"`
	SimulationLatency string `yaml:"simulation_latency"`
	Dashboard         struct {
		TickRate    string          `yaml:"tick_rate"`
		SampleEvery int             `yaml:"sample_every"`
		HistorySize int             `yaml:"history_size"`
		Color       string          `yaml:"color"`
		Thresholds  ThresholdConfig `yaml:"thresholds"`
	} `yaml:"dashboard"`
}

const fileHeader = `# aegis configuration
# simulation: auto | true | false
# Any key can be overridden with an AEGIS_ environment variable,
# e.g. AEGIS_SIMULATION=true or AEGIS_DASHBOARD_SAMPLE_EVERY=5

`

// Marshal renders cfg as commented YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var fc fileConfig
	fc.Version = cfg.Version
	fc.Simulation = cfg.Simulation
	fc.UseSudo = cfg.UseSudo
	fc.CommandTimeout = cfg.CommandTimeout.String()
	fc.SimulationLatency = cfg.SimulationLatency.String()
	fc.Dashboard.TickRate = cfg.Dashboard.TickRate.String()
	fc.Dashboard.SampleEvery = cfg.Dashboard.SampleEvery
	fc.Dashboard.HistorySize = cfg.Dashboard.HistorySize
	fc.Dashboard.Color = cfg.Dashboard.Color
	fc.Dashboard.Thresholds = cfg.Dashboard.Thresholds

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&fc); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config", "")
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to create config directory: "+filepath.Dir(path),
			"Check directory permissions")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file: "+path,
			"Check directory permissions")
	}
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "environment overrides"
	}
	return path
}
