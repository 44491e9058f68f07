package cli

import (
	"runtime"

	"github.com/aegisops/aegis/internal/catalog"
	"github.com/aegisops/aegis/internal/config"
	"github.com/aegisops/aegis/internal/logger"
	"github.com/aegisops/aegis/internal/runner"
	"github.com/aegisops/aegis/internal/telemetry"
)

// app bundles what every command builds from the config: the runner chosen
// once for this process, the catalog bound to it and the host sampler.
type app struct {
	cfg     *config.Config
	runner  runner.Runner
	catalog *catalog.Catalog
	sampler telemetry.Sampler
	goos    string
}

// newApp selects the runner for cfg on the current platform.
func newApp(cfg *config.Config, log logger.Logger) (*app, error) {
	return newAppFor(cfg, runtime.GOOS, log)
}

func newAppFor(cfg *config.Config, goos string, log logger.Logger) (*app, error) {
	mode, err := runner.ParseMode(cfg.Simulation)
	if err != nil {
		return nil, err
	}

	r := runner.Select(mode, goos, runner.Options{
		Timeout: cfg.CommandTimeout,
		Latency: cfg.SimulationLatency,
		UseSudo: cfg.UseSudo,
		Logger:  log,
	})

	return &app{
		cfg:     cfg,
		runner:  r,
		catalog: catalog.New(r),
		sampler: telemetry.NewSampler(goos),
		goos:    goos,
	}, nil
}

// modeLabel is the badge text for the selected runner.
func (a *app) modeLabel() string {
	if a.runner.Simulated() {
		return "SIMULATION"
	}
	return "ACTIVE"
}
