// Package runner executes named programs on behalf of the operation catalog.
//
// Two backends satisfy the Runner interface: Real spawns the program and
// captures its output, Simulation fabricates a deterministic result without
// touching the OS. Select picks one once at startup from the configured mode
// and the host platform.
//
// Run never returns an error. Every failure (missing binary, permission
// denied, non-zero exit, timeout) is reported through Result with
// Success=false and a populated Stderr.
package runner

import (
	"context"
	"strings"
	"time"

	"github.com/aegisops/aegis/internal/logger"
)

// Exit codes reported for failures that never produced a process status.
const (
	ExitSpawnFailed = -1
	ExitTimeout     = 124
	ExitNotFound    = 127
)

// Result is the outcome of a single invocation. It is never mutated after Run returns.
type Result struct {
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	ExitCode int
	Command  string
}

// Seconds returns the wall-clock duration in fractional seconds.
func (r Result) Seconds() float64 {
	return r.Duration.Seconds()
}

// Output returns stdout on success and stderr otherwise, falling back to
// whichever stream is non-empty.
func (r Result) Output() string {
	primary, secondary := r.Stdout, r.Stderr
	if !r.Success {
		primary, secondary = r.Stderr, r.Stdout
	}
	if strings.TrimSpace(primary) != "" {
		return primary
	}
	return secondary
}

// Runner runs a program with arguments and reports the outcome.
type Runner interface {
	// Run executes program with args. It blocks until the program exits,
	// the runner's timeout fires, or ctx is done.
	Run(ctx context.Context, program string, args []string) Result

	// Available reports whether tool can be found on this host.
	Available(tool string) bool

	// Simulated reports whether this runner fabricates its results.
	Simulated() bool
}

// Options configures both runner variants. Zero values are usable.
type Options struct {
	// Timeout bounds a real invocation. Zero disables the bound.
	Timeout time.Duration

	// Latency is how long a simulated invocation pretends to take.
	Latency time.Duration

	// UseSudo prefixes real invocations with "sudo -n" when not running as root.
	UseSudo bool

	Logger logger.Logger
}

func (o Options) logger() logger.Logger {
	if o.Logger == nil {
		return logger.Noop()
	}
	return o.Logger
}

// CommandLine joins a program and its arguments for display.
func CommandLine(program string, args []string) string {
	if len(args) == 0 {
		return program
	}
	return program + " " + strings.Join(args, " ")
}
