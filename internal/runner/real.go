package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/aegisops/aegis/internal/logger"
)

// waitDelay bounds how long Run keeps reading output after the process
// was killed or exited while descendants still hold its pipes.
const waitDelay = 2 * time.Second

// Real spawns programs on the local host.
type Real struct {
	timeout time.Duration
	sudo    []string
	log     logger.Logger
}

// NewReal creates a runner that executes programs for real.
func NewReal(opts Options) *Real {
	r := &Real{
		timeout: opts.Timeout,
		log:     opts.logger(),
	}
	if opts.UseSudo {
		r.sudo = sudoPrefix()
	}
	return r
}

// sudoPrefix returns the privilege escalation prefix, or nil when already
// root or sudo isn't installed.
func sudoPrefix() []string {
	if os.Geteuid() == 0 {
		return nil
	}
	if _, err := exec.LookPath("sudo"); err != nil {
		return nil
	}
	// -n fails fast instead of blocking on a password prompt the TUI can't show.
	return []string{"sudo", "-n"}
}

// Run executes program with args and captures stdout, stderr and duration.
// Programs are spawned directly, never through a shell.
func (r *Real) Run(ctx context.Context, program string, args []string) Result {
	start := time.Now()

	argv := append(append([]string{}, r.sudo...), program)
	argv = append(argv, args...)
	cmdLine := CommandLine(argv[0], argv[1:])

	parent := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.log.Debug("executing: %s", cmdLine)

	command := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr
	// Scripts like lynis fork helpers that inherit the output pipes. Kill the
	// whole group on cancel and stop waiting on the pipes shortly after.
	killProcessGroup(command)
	command.WaitDelay = waitDelay

	runErr := command.Run()

	result := Result{
		Command:  cmdLine,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		result.Success = true
		result.ExitCode = 0

	case errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil:
		result.ExitCode = ExitTimeout
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("command timed out after %s", r.timeout))
		r.log.Error("command timed out: %s", cmdLine)

	case errors.Is(parent.Err(), context.DeadlineExceeded):
		result.ExitCode = ExitTimeout
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("command deadline exceeded after %s",
			result.Duration.Round(time.Millisecond)))
		r.log.Error("command deadline exceeded: %s", cmdLine)

	case ctx.Err() != nil:
		result.ExitCode = ExitSpawnFailed
		if errors.As(runErr, &exitErr) && exitErr.ExitCode() >= 0 {
			result.ExitCode = exitErr.ExitCode()
		}
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("command cancelled: %v", ctx.Err()))
		r.log.Warn("command cancelled: %s", cmdLine)

	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()

	case errors.Is(runErr, exec.ErrNotFound), errors.Is(runErr, fs.ErrNotExist):
		result.ExitCode = ExitNotFound
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("command not found: %s", argv[0]))
		r.log.Error("command not found: %s", argv[0])

	default:
		result.ExitCode = ExitSpawnFailed
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("failed to execute command: %v", runErr))
		r.log.Error("failed to execute %s: %v", cmdLine, runErr)
	}

	return result
}

// Available reports whether tool is on PATH.
func (r *Real) Available(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}

// Simulated always returns false.
func (r *Real) Simulated() bool {
	return false
}

func appendLine(existing, line string) string {
	if existing == "" {
		return line
	}
	if existing[len(existing)-1] != '\n' {
		existing += "\n"
	}
	return existing + line
}
