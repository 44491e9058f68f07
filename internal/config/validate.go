package config

import (
	"fmt"
	"time"

	"github.com/aegisops/aegis/internal/errors"
	"github.com/aegisops/aegis/internal/runner"
)

// MinTickRate keeps the render loop from spinning.
const MinTickRate = time.Millisecond

// Validate checks the config and returns the first problem as a CONFIG error.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but aegis only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade aegis or regenerate the file with 'aegis config init --force'")
	}

	if _, err := runner.ParseMode(cfg.Simulation); err != nil {
		return err
	}

	if cfg.CommandTimeout < 0 {
		return errors.New(errors.ErrConfig,
			"command_timeout can't be negative",
			"Use 0 to disable the timeout, or a duration like 30s")
	}

	if cfg.SimulationLatency < 0 {
		return errors.New(errors.ErrConfig,
			"simulation_latency can't be negative",
			"Use 0 for instant simulated results")
	}

	d := cfg.Dashboard
	if d.TickRate < MinTickRate {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("dashboard.tick_rate %s is too short", d.TickRate),
			"Use at least 1ms; 16ms gives about 60 frames per second")
	}

	if d.SampleEvery < 1 {
		return errors.New(errors.ErrConfig,
			"dashboard.sample_every must be at least 1",
			"Set how many ticks pass between telemetry samples, e.g. 10")
	}

	if d.HistorySize < 1 {
		return errors.New(errors.ErrConfig,
			"dashboard.history_size must be at least 1",
			"120 samples fills a typical chart")
	}

	switch d.Color {
	case "auto", "always", "never":
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a valid dashboard.color", d.Color),
			"Use one of: auto, always, never")
	}

	if d.Thresholds.Warning < 0 || d.Thresholds.Critical > 100 || d.Thresholds.Warning > d.Thresholds.Critical {
		return errors.New(errors.ErrConfig,
			"dashboard.thresholds must satisfy 0 <= warning <= critical <= 100",
			fmt.Sprintf("Got warning=%.0f critical=%.0f", d.Thresholds.Warning, d.Thresholds.Critical))
	}

	return nil
}
