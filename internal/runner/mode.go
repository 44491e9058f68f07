package runner

import (
	"fmt"
	"strings"

	"github.com/aegisops/aegis/internal/errors"
)

// Mode selects which runner variant to construct.
type Mode string

const (
	// ModeAuto uses the real runner on Linux and the simulation everywhere else.
	ModeAuto Mode = "auto"
	// ModeSimulate always uses the simulation.
	ModeSimulate Mode = "true"
	// ModeReal always uses the real runner.
	ModeReal Mode = "false"
)

// ParseMode accepts the config and flag spellings of a mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "true", "on", "yes", "simulate", "simulation":
		return ModeSimulate, nil
	case "false", "off", "no", "real", "active":
		return ModeReal, nil
	default:
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a valid simulation mode", s),
			"Use one of: auto, true, false")
	}
}

// Simulates reports whether mode resolves to the simulation on goos.
func (m Mode) Simulates(goos string) bool {
	switch m {
	case ModeSimulate:
		return true
	case ModeReal:
		return false
	default:
		return goos != "linux"
	}
}

// Select builds the runner for mode on goos. It is evaluated once at startup;
// the result is never re-evaluated per call.
func Select(mode Mode, goos string, opts Options) Runner {
	if mode.Simulates(goos) {
		opts.logger().Info("runner initialized in SIMULATION mode (%s)", goos)
		return NewSimulation(opts)
	}
	opts.logger().Info("runner initialized in ACTIVE mode (%s)", goos)
	return NewReal(opts)
}
