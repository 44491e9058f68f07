package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/aegisops/aegis/internal/logger"
)

// DefaultLatency is the pause a simulated invocation takes so the UI feels
// like something ran. It carries no semantics and may be zero.
const DefaultLatency = 500 * time.Millisecond

// SimulationPrefix starts every simulated stdout.
const SimulationPrefix = "[SIMULATION] Executed: "

// lynisReport is the canned audit returned for a simulated security scan so
// the result pane has representative findings to show.
const lynisReport = `--- MOCK LYNIS REPORT ---
[+] System looks mostly secure
[!] Found 2 potential issues...
WARNING: SSH Password Auth enabled (Simulated)
SUGGESTION: Install fail2ban (Simulated)`

// Simulation fabricates deterministic successful results. It never spawns a process.
type Simulation struct {
	latency  time.Duration
	payloads map[string]string
	log      logger.Logger
}

// NewSimulation creates a simulated runner.
func NewSimulation(opts Options) *Simulation {
	return &Simulation{
		latency: opts.Latency,
		payloads: map[string]string{
			"lynis": lynisReport,
		},
		log: opts.logger(),
	}
}

// Run waits the configured latency and echoes the invocation back.
// Cancelling ctx shortens the wait but never changes the result.
func (s *Simulation) Run(ctx context.Context, program string, args []string) Result {
	start := time.Now()
	cmdLine := CommandLine(program, args)

	s.log.Info("[SIM] executing: %s", cmdLine)

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	body := "Success."
	if payload, ok := s.payloads[program]; ok {
		body = payload
	}

	return Result{
		Success:  true,
		Stdout:   fmt.Sprintf("%s%s\n%s", SimulationPrefix, cmdLine, body),
		Duration: time.Since(start),
		ExitCode: 0,
		Command:  cmdLine,
	}
}

// Available pretends every tool is installed.
func (s *Simulation) Available(string) bool {
	return true
}

// Simulated always returns true.
func (s *Simulation) Simulated() bool {
	return true
}
