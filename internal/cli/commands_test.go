package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aegisops/aegis/internal/catalog"
	"github.com/aegisops/aegis/internal/config"
	"github.com/aegisops/aegis/internal/errors"
	"github.com/aegisops/aegis/internal/logger"
	"github.com/aegisops/aegis/internal/runner"
	fakerunner "github.com/aegisops/aegis/internal/runner/testing"
	"github.com/aegisops/aegis/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMachineMode(t *testing.T, on bool) {
	t.Helper()
	saved := machineMode
	t.Cleanup(func() { machineMode = saved })
	machineMode = on
}

func fakeApp(fake *fakerunner.FakeRunner, sampler telemetry.Sampler) *app {
	return &app{
		cfg:     config.DefaultConfig(),
		runner:  fake,
		catalog: catalog.New(fake),
		sampler: sampler,
		goos:    "linux",
	}
}

func TestNewAppFor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SimulationLatency = 0

	tests := []struct {
		simulation string
		goos       string
		want       string
	}{
		{"auto", "linux", "ACTIVE"},
		{"auto", "darwin", "SIMULATION"},
		{"true", "linux", "SIMULATION"},
		{"false", "windows", "ACTIVE"},
	}
	for _, tt := range tests {
		t.Run(tt.simulation+"/"+tt.goos, func(t *testing.T) {
			cfg.Simulation = tt.simulation
			a, err := newAppFor(cfg, tt.goos, logger.Noop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.modeLabel())
			assert.Equal(t, 4, a.catalog.Len())
		})
	}

	cfg.Simulation = "sometimes"
	_, err := newAppFor(cfg, "linux", logger.Noop())
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestWriteOps_JSON(t *testing.T) {
	setMachineMode(t, true)
	fake := fakerunner.NewFakeRunner()
	fake.IsSimulated = true

	var buf bytes.Buffer
	require.NoError(t, writeOps(&buf, fakeApp(fake, nil)))

	var env struct {
		Success bool              `json:"success"`
		Data    []OperationOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	require.Len(t, env.Data, 4)
	assert.Equal(t, "security-scan", env.Data[0].ID)
	assert.False(t, env.Data[0].Mutates)
	assert.Equal(t, "harden", env.Data[2].Kind)
	assert.Equal(t, "ufw enable", env.Data[3].Command)
}

func TestWriteOps_Table(t *testing.T) {
	setMachineMode(t, false)
	fake := fakerunner.NewFakeRunner()

	var buf bytes.Buffer
	require.NoError(t, writeOps(&buf, fakeApp(fake, nil)))

	out := buf.String()
	assert.Contains(t, out, "[ACTIVE]")
	assert.Contains(t, out, "4 operations, in dashboard order")
	assert.Contains(t, out, "security-scan")
	assert.Contains(t, out, "Enable Firewall")
	assert.Contains(t, out, "ufw --force enable")
}

func TestPickOperation(t *testing.T) {
	setMachineMode(t, true) // never prompt
	cat := catalog.New(fakerunner.NewFakeRunner())

	op, err := pickOperation(cat, "harden-ssh")
	require.NoError(t, err)
	assert.Equal(t, "Harden SSH", op.Title)

	op, err = pickOperation(cat, "malware scan (clamav)")
	require.NoError(t, err)
	assert.Equal(t, catalog.MalwareScan, op.ID)

	_, err = pickOperation(cat, "format-disk")
	assert.True(t, errors.IsCode(err, errors.ErrInput))

	_, err = pickOperation(cat, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No operation given")
}

func TestConfirmOperation_NonInteractive(t *testing.T) {
	setMachineMode(t, true)
	op := catalog.New(fakerunner.NewFakeRunner()).Get(3)

	ok, err := confirmOperation(op)
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestRunOperation_Success(t *testing.T) {
	setMachineMode(t, false)
	fake := fakerunner.NewFakeRunner()
	fake.Results["lynis"] = runner.Result{Success: true, Stdout: "Hardening index : 72", Duration: 1500 * time.Millisecond}
	op := catalog.New(fake).Get(0)

	var buf bytes.Buffer
	require.NoError(t, runOperation(context.Background(), &buf, op))

	out := buf.String()
	assert.Contains(t, out, "$ lynis audit system --quick --no-colors")
	assert.Contains(t, out, "Hardening index : 72")
	assert.Contains(t, out, "Security Scan (Lynis) completed")
	assert.Contains(t, out, "(1.50s)")
	assert.Contains(t, out, "score 100")
}

func TestRunOperation_FailureExitsOne(t *testing.T) {
	setMachineMode(t, false)
	fake := fakerunner.NewFakeRunner()
	fake.Default = runner.Result{Success: false, Stderr: "command not found: ufw", ExitCode: 127}
	op := catalog.New(fake).Get(3)

	var buf bytes.Buffer
	err := runOperation(context.Background(), &buf, op)

	var exitErr *exitCodeError
	require.True(t, stderrors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.code)
	assert.Contains(t, buf.String(), "command not found: ufw")
	assert.Contains(t, buf.String(), "failed with exit code 127")
}

func TestRunOperation_JSON(t *testing.T) {
	setMachineMode(t, true)
	fake := fakerunner.NewFakeRunner()
	fake.Results["clamscan"] = runner.Result{Success: false, Stderr: "permission denied\nmore", ExitCode: 2}
	op := catalog.New(fake).Get(1)

	var buf bytes.Buffer
	err := runOperation(context.Background(), &buf, op)
	require.Error(t, err)

	var env struct {
		Success bool       `json:"success"`
		Data    RunOutput  `json:"data"`
		Error   *JSONError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, 2, env.Data.ExitCode)
	require.NotNil(t, env.Data.Score)
	assert.Equal(t, 0, *env.Data.Score)
	assert.Equal(t, ErrCodeCommandFailed, env.Error.Code)
	assert.Equal(t, "permission denied", env.Error.Message)
}

func TestRunOperation_SimulationDoesNotSpawn(t *testing.T) {
	setMachineMode(t, false)
	sim := runner.NewSimulation(runner.Options{})
	op := catalog.New(sim).Get(2)

	var buf bytes.Buffer
	require.NoError(t, runOperation(context.Background(), &buf, op))
	assert.Contains(t, buf.String(), "[SIMULATION] Executed: sed -i s/PermitRootLogin yes/PermitRootLogin no/ /fake/path/sshd_config")
}

func TestCollectStatus(t *testing.T) {
	fake := fakerunner.NewFakeRunner()
	fake.Tools["lynis"] = true
	fake.Tools["sed"] = true
	calls := 0
	sampler := telemetry.SamplerFunc(func() (telemetry.Sample, error) {
		calls++
		return telemetry.Sample{
			CPUPercent: float64(calls * 10), MemPercent: 25, MemUsedBytes: 1 << 30, MemTotalBytes: 4 << 30,
			DiskPercent: 40, DiskUsedBytes: 200e9, DiskFreeBytes: 300e9, DiskTotalBytes: 500e9,
			Uptime: 50 * time.Hour,
		}, nil
	})

	st := collectStatus(context.Background(), fakeApp(fake, sampler), "/etc/aegis.yaml", 0)

	assert.Equal(t, "ACTIVE", st.Mode)
	assert.Equal(t, 2, calls, "status primes the sampler before reading")
	require.NotNil(t, st.Telemetry)
	assert.Equal(t, 20.0, st.Telemetry.CPUPercent)
	assert.Equal(t, 40.0, st.Telemetry.DiskPercent)
	assert.Equal(t, uint64(300e9), st.Telemetry.DiskFreeBytes)
	assert.Equal(t, int64(50*3600), st.Telemetry.UptimeSeconds)
	require.Len(t, st.Tools, 4)
	assert.True(t, st.Tools[0].Installed)
	assert.False(t, st.Tools[1].Installed)
	assert.Equal(t, "clamscan", st.Tools[1].Program)

	setMachineMode(t, false)
	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, st))
	out := buf.String()
	assert.Contains(t, out, "20.0%")
	assert.Contains(t, out, "1.0 GiB / 4.0 GiB")
	assert.Contains(t, out, "host status")
	assert.Contains(t, out, "40.0%")
	assert.Contains(t, out, "200 GB / 500 GB, 300 GB free")
	assert.Contains(t, out, "2d 2h 0m")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "/etc/aegis.yaml")
}

func TestCollectStatus_TelemetryUnavailable(t *testing.T) {
	fake := fakerunner.NewFakeRunner()
	st := collectStatus(context.Background(), fakeApp(fake, telemetry.NewSampler("plan9")), "", 0)

	assert.Nil(t, st.Telemetry)
	assert.Contains(t, st.TelemetryError, "plan9")

	setMachineMode(t, true)
	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, st))
	assert.Contains(t, buf.String(), `"telemetry_error"`)
}

func TestWriteStatus_JSONIncludesDiskAndUptime(t *testing.T) {
	setMachineMode(t, true)
	st := StatusOutput{
		Mode:     "ACTIVE",
		Platform: "linux",
		Telemetry: &StatusUsage{
			CPUPercent: 5, DiskPercent: 12.5, DiskFreeBytes: 7, DiskTotalBytes: 8, UptimeSeconds: 90,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, st))

	var env struct {
		Data StatusOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	require.NotNil(t, env.Data.Telemetry)
	assert.Equal(t, 12.5, env.Data.Telemetry.DiskPercent)
	assert.Equal(t, uint64(7), env.Data.Telemetry.DiskFreeBytes)
	assert.Equal(t, int64(90), env.Data.Telemetry.UptimeSeconds)
}

func TestConfigInit(t *testing.T) {
	setMachineMode(t, true) // non-interactive
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	var buf bytes.Buffer
	require.NoError(t, configInit(&buf, path, false))
	assert.Contains(t, buf.String(), "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	// Existing file without --force is refused.
	err = configInit(&buf, path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, os.WriteFile(path, []byte("simulation: true\n"), 0o644))
	require.NoError(t, configInit(&buf, path, true))
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.Simulation)
}

func TestConfigTarget(t *testing.T) {
	saved := cfgFile
	t.Cleanup(func() { cfgFile = saved })

	home := t.TempDir()
	t.Setenv("HOME", home)

	cfgFile = ""
	assert.Equal(t, filepath.Join(home, ".config", "aegis", "config.yaml"), configTarget())

	cfgFile = "~/alt.yaml"
	assert.Equal(t, filepath.Join(home, "alt.yaml"), configTarget())
}
