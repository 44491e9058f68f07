// Package telemetry samples host CPU and memory utilization and keeps a
// bounded history of recent samples for the dashboard chart.
package telemetry

import (
	"fmt"
	"time"

	"github.com/aegisops/aegis/internal/errors"
	"github.com/dustin/go-humanize"
)

// Sample is one utilization reading.
type Sample struct {
	CPUPercent    float64
	MemPercent    float64
	MemUsedBytes  uint64
	MemTotalBytes uint64

	// Disk fields describe the filesystem holding the root path. They stay
	// zero when it can't be read.
	DiskPercent    float64
	DiskUsedBytes  uint64
	DiskFreeBytes  uint64
	DiskTotalBytes uint64

	// Uptime is zero when the host doesn't report it.
	Uptime time.Duration
	Time   time.Time
}

// MemoryString formats memory usage as "3.2 GiB / 15.5 GiB".
func (s Sample) MemoryString() string {
	if s.MemTotalBytes == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%s / %s", humanize.IBytes(s.MemUsedBytes), humanize.IBytes(s.MemTotalBytes))
}

// DiskString formats disk usage as "120 GB / 500 GB".
func (s Sample) DiskString() string {
	if s.DiskTotalBytes == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%s / %s", humanize.Bytes(s.DiskUsedBytes), humanize.Bytes(s.DiskTotalBytes))
}

// UptimeString formats uptime as days, hours and minutes, e.g. "3d 4h 12m".
func (s Sample) UptimeString() string {
	if s.Uptime <= 0 {
		return "n/a"
	}
	total := int64(s.Uptime / time.Minute)
	days, hours, mins := total/(24*60), (total/60)%24, total%60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// Sampler reads instantaneous utilization from the host.
type Sampler interface {
	Sample() (Sample, error)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func() (Sample, error)

// Sample calls f.
func (f SamplerFunc) Sample() (Sample, error) {
	return f()
}

// NewSampler returns the sampler for goos. Linux reads /proc directly,
// macOS, Windows and FreeBSD go through gopsutil, and anything else gets a
// sampler that always fails so callers skip the tick.
func NewSampler(goos string) Sampler {
	switch goos {
	case "linux":
		return NewProcSampler()
	case "darwin", "freebsd":
		return NewPortableSampler("/")
	case "windows":
		return NewPortableSampler(`C:\`)
	default:
		return unsupportedSampler{goos: goos}
	}
}

type unsupportedSampler struct {
	goos string
}

func (u unsupportedSampler) Sample() (Sample, error) {
	return Sample{}, errors.New(errors.ErrTelemetry,
		fmt.Sprintf("Telemetry isn't supported on %s", u.goos),
		"Telemetry works on Linux, macOS, Windows and FreeBSD")
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
