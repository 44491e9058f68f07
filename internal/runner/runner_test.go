package runner

import (
	"context"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/aegisops/aegis/internal/errors"
	"github.com/aegisops/aegis/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulation_EchoesInvocation(t *testing.T) {
	sim := NewSimulation(Options{})

	tests := []struct {
		program string
		args    []string
	}{
		{"ufw", []string{"enable"}},
		{"sed", []string{"-i", "s/PermitRootLogin yes/PermitRootLogin no/", "/fake/path/sshd_config"}},
		{"definitely-not-a-real-binary-xyz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.program, func(t *testing.T) {
			res := sim.Run(context.Background(), tt.program, tt.args)

			assert.True(t, res.Success)
			assert.Empty(t, res.Stderr)
			assert.Equal(t, 0, res.ExitCode)
			assert.Contains(t, res.Stdout, tt.program)
			for _, arg := range tt.args {
				assert.Contains(t, res.Stdout, arg)
			}
			assert.True(t, strings.HasPrefix(res.Stdout, SimulationPrefix))
		})
	}
}

func TestSimulation_DoesNotTouchFilesystem(t *testing.T) {
	dir := t.TempDir()
	target := dir + "/created-by-touch"

	res := NewSimulation(Options{}).Run(context.Background(), "touch", []string{target})

	assert.True(t, res.Success)
	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err), "simulation must not spawn processes")
}

func TestSimulation_SecurityScanPayload(t *testing.T) {
	res := NewSimulation(Options{}).Run(context.Background(), "lynis", []string{"audit", "system", "--quick", "--no-colors"})

	require.True(t, res.Success)
	assert.Contains(t, res.Stdout, "lynis audit system --quick --no-colors")
	assert.Contains(t, res.Stdout, "Found 2 potential issues")
	assert.Contains(t, res.Stdout, "WARNING:")
}

func TestSimulation_Latency(t *testing.T) {
	sim := NewSimulation(Options{Latency: 30 * time.Millisecond})

	res := sim.Run(context.Background(), "ufw", []string{"enable"})
	assert.GreaterOrEqual(t, res.Duration, 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewSimulation(Options{Latency: time.Hour})
	res = slow.Run(ctx, "ufw", []string{"enable"})
	assert.True(t, res.Success, "cancellation shortens the wait but keeps the result")
}

func TestSimulation_Capabilities(t *testing.T) {
	sim := NewSimulation(Options{})
	assert.True(t, sim.Simulated())
	assert.True(t, sim.Available("lynis"))
	assert.True(t, sim.Available("anything"))
}

func TestReal_MissingProgram(t *testing.T) {
	log := logger.NewBufferLogger()
	r := NewReal(Options{Logger: log})

	res := r.Run(context.Background(), "aegis-no-such-program-1234", []string{"--flag"})

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Stderr)
	assert.Contains(t, res.Stderr, "aegis-no-such-program-1234")
	assert.Equal(t, ExitNotFound, res.ExitCode)
	assert.GreaterOrEqual(t, res.Seconds(), 0.0)
	assert.True(t, log.HasLevel("error"))
}

func TestReal_CapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	r := NewReal(Options{})

	res := r.Run(context.Background(), "sh", []string{"-c", "echo out; echo err >&2"})

	require.True(t, res.Success)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, "sh -c echo out; echo err >&2", res.Command)
	assert.Greater(t, res.Duration, time.Duration(0))
}

func TestReal_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	res := NewReal(Options{}).Run(context.Background(), "sh", []string{"-c", "echo nope >&2; exit 3"})

	assert.False(t, res.Success)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "nope\n", res.Stderr)
}

func TestReal_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sleep")
	}
	r := NewReal(Options{Timeout: 50 * time.Millisecond})

	res := r.Run(context.Background(), "sleep", []string{"5"})

	assert.False(t, res.Success)
	assert.Equal(t, ExitTimeout, res.ExitCode)
	assert.Contains(t, res.Stderr, "timed out")
	assert.Less(t, res.Duration, 5*time.Second)
}

func TestReal_TimeoutKillsDescendants(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	r := NewReal(Options{Timeout: 200 * time.Millisecond})

	// The shell forks sleep, which inherits stdout and outlives a kill of
	// the shell alone.
	start := time.Now()
	res := r.Run(context.Background(), "sh", []string{"-c", "sleep 3; echo done"})
	elapsed := time.Since(start)

	assert.False(t, res.Success)
	assert.Equal(t, ExitTimeout, res.ExitCode)
	assert.Contains(t, res.Stderr, "command timed out after 200ms")
	assert.NotContains(t, res.Stdout, "done")
	assert.Less(t, elapsed, time.Second)
}

func TestReal_ParentDeadline(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sleep")
	}
	r := NewReal(Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res := r.Run(ctx, "sleep", []string{"5"})

	assert.False(t, res.Success)
	assert.Equal(t, ExitTimeout, res.ExitCode)
	assert.Contains(t, res.Stderr, "deadline exceeded")
	assert.NotContains(t, res.Stderr, "after 0s")
	assert.Less(t, res.Duration, 3*time.Second)
}

func TestReal_ParentCancelled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sleep")
	}
	r := NewReal(Options{Timeout: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	res := r.Run(ctx, "sleep", []string{"5"})

	assert.False(t, res.Success)
	assert.Equal(t, ExitSpawnFailed, res.ExitCode)
	assert.Contains(t, res.Stderr, "command cancelled: context canceled")
}

func TestReal_Capabilities(t *testing.T) {
	r := NewReal(Options{})
	assert.False(t, r.Simulated())
	assert.False(t, r.Available("aegis-no-such-program-1234"))
}

func TestResult_Output(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{"success uses stdout", Result{Success: true, Stdout: "ok", Stderr: "warn"}, "ok"},
		{"failure uses stderr", Result{Success: false, Stdout: "partial", Stderr: "boom"}, "boom"},
		{"failure falls back to stdout", Result{Success: false, Stdout: "partial"}, "partial"},
		{"success falls back to stderr", Result{Success: true, Stderr: "only err"}, "only err"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Output())
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"AUTO", ModeAuto},
		{"true", ModeSimulate},
		{"simulate", ModeSimulate},
		{"false", ModeReal},
		{"real", ModeReal},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseMode("maybe")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name      string
		mode      Mode
		goos      string
		simulated bool
	}{
		{"auto on linux is real", ModeAuto, "linux", false},
		{"auto on darwin simulates", ModeAuto, "darwin", true},
		{"auto on windows simulates", ModeAuto, "windows", true},
		{"forced simulation on linux", ModeSimulate, "linux", true},
		{"forced real on darwin", ModeReal, "darwin", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Select(tt.mode, tt.goos, Options{})
			assert.Equal(t, tt.simulated, r.Simulated())
			if tt.simulated {
				assert.IsType(t, &Simulation{}, r)
			} else {
				assert.IsType(t, &Real{}, r)
			}
		})
	}
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "ufw", CommandLine("ufw", nil))
	assert.Equal(t, "ufw --force enable", CommandLine("ufw", []string{"--force", "enable"}))
}
