package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aegisops/aegis/internal/config"
	"github.com/aegisops/aegis/internal/errors"
	"github.com/aegisops/aegis/internal/logger"
	"github.com/aegisops/aegis/internal/telemetry"
	"github.com/aegisops/aegis/internal/ui"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// statusSampleGap separates the two CPU samples. A reading taken right after
// the sampler is built covers too short an interval to mean much.
const statusSampleGap = 250 * time.Millisecond

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show runner mode, utilization and tool availability",
	Long: `Print a one-shot report: which runner is active, current CPU and memory
utilization, and whether each operation's tool is installed.

Examples:
  aegis status
  aegis status --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(Config(), logger.Noop())
		if err != nil {
			return err
		}
		path, _ := config.Find(cfgFile)
		report := collectStatus(cmd.Context(), a, path, statusSampleGap)
		return writeStatus(os.Stdout, report)
	},
}

func init() {
	addJSONFlag(statusCmd)
	rootCmd.AddCommand(statusCmd)
}

// StatusOutput represents the JSON output for the status command.
type StatusOutput struct {
	Mode       string       `json:"mode"`
	Platform   string       `json:"platform"`
	ConfigPath string       `json:"config_path,omitempty"`
	Telemetry  *StatusUsage `json:"telemetry,omitempty"`
	// TelemetryError is set instead of Telemetry when sampling failed.
	TelemetryError string       `json:"telemetry_error,omitempty"`
	Tools          []ToolStatus `json:"tools"`
}

// StatusUsage is a utilization snapshot.
type StatusUsage struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemPercent    float64 `json:"mem_percent"`
	MemUsedBytes  uint64  `json:"mem_used_bytes"`
	MemTotalBytes uint64  `json:"mem_total_bytes"`

	DiskPercent    float64 `json:"disk_percent"`
	DiskUsedBytes  uint64  `json:"disk_used_bytes"`
	DiskFreeBytes  uint64  `json:"disk_free_bytes"`
	DiskTotalBytes uint64  `json:"disk_total_bytes"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
}

// ToolStatus reports whether one operation's program is installed.
type ToolStatus struct {
	Operation string `json:"operation"`
	Program   string `json:"program"`
	Installed bool   `json:"installed"`
}

func collectStatus(ctx context.Context, a *app, configPath string, gap time.Duration) StatusOutput {
	out := StatusOutput{
		Mode:       a.modeLabel(),
		Platform:   a.goos,
		ConfigPath: configPath,
	}

	sample, err := sampleTwice(ctx, a.sampler, gap)
	if err != nil {
		out.TelemetryError = errors.Message(err)
	} else {
		out.Telemetry = &StatusUsage{
			CPUPercent:    sample.CPUPercent,
			MemPercent:    sample.MemPercent,
			MemUsedBytes:  sample.MemUsedBytes,
			MemTotalBytes: sample.MemTotalBytes,

			DiskPercent:    sample.DiskPercent,
			DiskUsedBytes:  sample.DiskUsedBytes,
			DiskFreeBytes:  sample.DiskFreeBytes,
			DiskTotalBytes: sample.DiskTotalBytes,
			UptimeSeconds:  int64(sample.Uptime / time.Second),
		}
	}

	for _, op := range a.catalog.All() {
		out.Tools = append(out.Tools, ToolStatus{
			Operation: op.ID,
			Program:   op.Program,
			Installed: a.runner.Available(op.Program),
		})
	}
	return out
}

// sampleTwice primes the sampler, waits gap, and returns the second reading
// so CPU reflects the interval rather than the time since boot.
func sampleTwice(ctx context.Context, s telemetry.Sampler, gap time.Duration) (telemetry.Sample, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := s.Sample(); err != nil {
		return telemetry.Sample{}, err
	}

	timer := time.NewTimer(gap)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return s.Sample()
}

func writeStatus(w io.Writer, st StatusOutput) error {
	if MachineMode() {
		return WriteJSONSuccess(w, st)
	}

	fmt.Fprint(w, ui.RenderHeader(ui.HeaderInfo{
		Version: formatVersion(version),
		Tagline: "host status",
		Mode:    st.Mode,
	}))

	configPath := st.ConfigPath
	if configPath == "" {
		configPath = ui.MutedStyle().Render("none (defaults)")
	}

	fields := []ui.Field{
		{Label: "Platform", Value: st.Platform},
		{Label: "Config", Value: configPath},
	}
	if st.Telemetry != nil {
		th := Config().Dashboard.Thresholds
		pct := func(v float64) string {
			return ui.SuccessStyle().
				Foreground(ui.ThresholdColor(v, th.Warning, th.Critical)).
				Render(fmt.Sprintf("%.1f%%", v))
		}
		fields = append(fields,
			ui.Field{Label: "CPU", Value: pct(st.Telemetry.CPUPercent)},
			ui.Field{Label: "Memory", Value: pct(st.Telemetry.MemPercent) + "  " +
				ui.MutedStyle().Render(humanize.IBytes(st.Telemetry.MemUsedBytes)+" / "+humanize.IBytes(st.Telemetry.MemTotalBytes))},
		)
		snapshot := telemetry.Sample{
			DiskUsedBytes:  st.Telemetry.DiskUsedBytes,
			DiskTotalBytes: st.Telemetry.DiskTotalBytes,
			Uptime:         time.Duration(st.Telemetry.UptimeSeconds) * time.Second,
		}
		diskValue := ui.MutedStyle().Render(snapshot.DiskString())
		if st.Telemetry.DiskTotalBytes > 0 {
			diskValue = pct(st.Telemetry.DiskPercent) + "  " + ui.MutedStyle().Render(
				snapshot.DiskString()+", "+humanize.Bytes(st.Telemetry.DiskFreeBytes)+" free")
		}
		fields = append(fields,
			ui.Field{Label: "Disk", Value: diskValue},
			ui.Field{Label: "Uptime", Value: snapshot.UptimeString()},
		)
	} else {
		fields = append(fields, ui.Field{Label: "Telemetry", Value: ui.WarningStyle().Render(st.TelemetryError)})
	}
	fmt.Fprint(w, ui.RenderFields(fields))
	fmt.Fprintln(w)

	tools := make([]ui.Field, len(st.Tools))
	for i, t := range st.Tools {
		mark := ui.SuccessStyle().Render(ui.SymbolSuccess + " installed")
		if !t.Installed {
			mark = ui.ErrorStyle().Render(ui.SymbolFail + " missing")
		}
		tools[i] = ui.Field{Label: t.Program, Value: mark + ui.MutedStyle().Render("  ("+t.Operation+")")}
	}
	fmt.Fprint(w, ui.RenderFields(tools))
	return nil
}
