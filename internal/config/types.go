package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete aegis configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Simulation selects the command backend: "auto" (simulate unless on
	// Linux), "true" (always simulate) or "false" (always run for real).
	Simulation string `yaml:"simulation" mapstructure:"simulation"`

	// UseSudo prefixes real invocations with "sudo -n" when not root.
	UseSudo bool `yaml:"use_sudo" mapstructure:"use_sudo"`

	// CommandTimeout bounds each real invocation. Zero disables it.
	CommandTimeout time.Duration `yaml:"command_timeout" mapstructure:"command_timeout"`

	// SimulationLatency is how long a simulated invocation pretends to take.
	SimulationLatency time.Duration `yaml:"simulation_latency" mapstructure:"simulation_latency"`

	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
}

// DashboardConfig controls the interactive dashboard loop.
type DashboardConfig struct {
	// TickRate is the render/poll interval.
	TickRate time.Duration `yaml:"tick_rate" mapstructure:"tick_rate"`

	// SampleEvery samples telemetry once every N ticks.
	SampleEvery int `yaml:"sample_every" mapstructure:"sample_every"`

	// HistorySize is the number of telemetry samples kept for the chart.
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`

	// Color mode: "auto", "always", or "never".
	Color string `yaml:"color" mapstructure:"color"`

	Thresholds ThresholdConfig `yaml:"thresholds" mapstructure:"thresholds"`
}

// ThresholdConfig sets the utilization percentages where the chart changes colour.
type ThresholdConfig struct {
	Warning  float64 `yaml:"warning" mapstructure:"warning"`
	Critical float64 `yaml:"critical" mapstructure:"critical"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:           CurrentConfigVersion,
		Simulation:        "auto",
		UseSudo:           false,
		CommandTimeout:    30 * time.Second,
		SimulationLatency: 500 * time.Millisecond,
		Dashboard: DashboardConfig{
			TickRate:    16 * time.Millisecond,
			SampleEvery: 10,
			HistorySize: 120,
			Color:       "auto",
			Thresholds: ThresholdConfig{
				Warning:  70,
				Critical: 90,
			},
		},
	}
}
