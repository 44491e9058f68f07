// Package testing provides test doubles for the runner package.
package testing

import (
	"context"
	"sync"

	"github.com/aegisops/aegis/internal/runner"
)

// RunCall records a call to Run.
type RunCall struct {
	Program string
	Args    []string
}

// FakeRunner records invocations and returns canned results.
type FakeRunner struct {
	mu sync.Mutex

	// Results maps a program name to the result returned for it.
	Results map[string]runner.Result
	// Default is returned for programs missing from Results.
	Default runner.Result
	// Gate, when non-nil, blocks Run until it is closed or receives.
	Gate chan struct{}
	// Tools lists programs Available reports as installed.
	Tools map[string]bool
	// IsSimulated is returned by Simulated.
	IsSimulated bool

	Calls []RunCall
}

// NewFakeRunner creates a fake whose default result is a success.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Results: make(map[string]runner.Result),
		Default: runner.Result{Success: true},
		Tools:   make(map[string]bool),
	}
}

// Run records the call and returns the configured result.
func (f *FakeRunner) Run(ctx context.Context, program string, args []string) runner.Result {
	f.mu.Lock()
	f.Calls = append(f.Calls, RunCall{Program: program, Args: append([]string(nil), args...)})
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.Results[program]
	if !ok {
		res = f.Default
	}
	res.Command = runner.CommandLine(program, args)
	return res
}

// Available reports whether tool was registered in Tools.
func (f *FakeRunner) Available(tool string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Tools[tool]
}

// Simulated returns IsSimulated.
func (f *FakeRunner) Simulated() bool {
	return f.IsSimulated
}

// CallCount returns how many times Run was called.
func (f *FakeRunner) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// LastCall returns the most recent call, or a zero RunCall.
func (f *FakeRunner) LastCall() RunCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return RunCall{}
	}
	return f.Calls[len(f.Calls)-1]
}
