package telemetry

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aegisops/aegis/internal/errors"
)

// Default /proc locations.
const (
	ProcStatPath    = "/proc/stat"
	ProcMeminfoPath = "/proc/meminfo"
)

// cpuTimes holds the aggregate jiffy counters from the "cpu " line.
type cpuTimes struct {
	total uint64
	idle  uint64
}

// ProcSampler reads /proc/stat and /proc/meminfo. CPU utilization is the
// busy share of jiffies elapsed since the previous reading; without one it
// is the average since boot.
type ProcSampler struct {
	StatPath    string
	MeminfoPath string

	host    hostStats
	now     func() time.Time
	prev    cpuTimes
	hasPrev bool
}

// NewProcSampler creates a sampler reading the standard /proc files, with
// the CPU counters already read once so the first Sample covers only the
// time since construction.
func NewProcSampler() *ProcSampler {
	p := &ProcSampler{
		StatPath:    ProcStatPath,
		MeminfoPath: ProcMeminfoPath,
		host:        defaultHostStats("/"),
		now:         time.Now,
	}
	p.prime()
	return p
}

// prime records the current CPU counters as the baseline. Errors are left
// for Sample to report.
func (p *ProcSampler) prime() {
	stat, err := os.ReadFile(p.StatPath)
	if err != nil {
		return
	}
	if cur, err := parseCPUTimes(string(stat)); err == nil {
		p.prev = cur
		p.hasPrev = true
	}
}

// Sample reads both files and returns the current utilization.
func (p *ProcSampler) Sample() (Sample, error) {
	stat, err := os.ReadFile(p.StatPath)
	if err != nil {
		return Sample{}, errors.WrapWithCode(err, errors.ErrTelemetry,
			"Couldn't read CPU statistics",
			"Check that "+p.StatPath+" is readable")
	}
	cur, err := parseCPUTimes(string(stat))
	if err != nil {
		return Sample{}, errors.WrapWithCode(err, errors.ErrTelemetry,
			"Couldn't parse CPU statistics", "")
	}

	meminfo, err := os.ReadFile(p.MeminfoPath)
	if err != nil {
		return Sample{}, errors.WrapWithCode(err, errors.ErrTelemetry,
			"Couldn't read memory statistics",
			"Check that "+p.MeminfoPath+" is readable")
	}
	total, used, err := parseMeminfo(string(meminfo))
	if err != nil {
		return Sample{}, errors.WrapWithCode(err, errors.ErrTelemetry,
			"Couldn't parse memory statistics", "")
	}

	base := cpuTimes{}
	if p.hasPrev {
		base = p.prev
	}
	p.prev = cur
	p.hasPrev = true

	now := time.Now
	if p.now != nil {
		now = p.now
	}

	s := Sample{
		CPUPercent:    cpuPercent(base, cur),
		MemUsedBytes:  used,
		MemTotalBytes: total,
		Time:          now(),
	}
	if total > 0 {
		s.MemPercent = clampPercent(float64(used) / float64(total) * 100)
	}
	p.host.fill(&s)
	return s, nil
}

// cpuPercent computes busy share between two counter snapshots.
func cpuPercent(prev, cur cpuTimes) float64 {
	// Counters can go backwards after a CPU is hot-unplugged.
	if cur.total <= prev.total || cur.idle < prev.idle {
		return 0
	}
	dTotal := cur.total - prev.total
	dIdle := cur.idle - prev.idle
	if dIdle > dTotal {
		return 0
	}
	return clampPercent(float64(dTotal-dIdle) / float64(dTotal) * 100)
}

// parseCPUTimes extracts the aggregate counters from /proc/stat.
// Fields: cpu user nice system idle iowait irq softirq steal guest guest_nice.
// guest and guest_nice are already counted in user and nice, so they are skipped.
func parseCPUTimes(procStat string) (cpuTimes, error) {
	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return cpuTimes{}, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}

		var t cpuTimes
		for i := 1; i < len(fields) && i <= 8; i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return cpuTimes{}, fmt.Errorf("failed to parse cpu field %d: %w", i, err)
			}
			t.total += val
			// idle (4) and iowait (5)
			if i == 4 || i == 5 {
				t.idle += val
			}
		}
		return t, nil
	}

	if err := scanner.Err(); err != nil {
		return cpuTimes{}, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	return cpuTimes{}, fmt.Errorf("no aggregate cpu line in /proc/stat")
}

// parseMeminfo returns total and used bytes from /proc/meminfo. Used memory
// prefers MemAvailable and falls back to free+buffers+cached on old kernels.
func parseMeminfo(procMeminfo string) (total, used uint64, err error) {
	values := make(map[string]uint64)
	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		key := strings.TrimSuffix(parts[0], ":")
		val, perr := strconv.ParseUint(parts[1], 10, 64)
		if perr != nil {
			continue
		}
		// Values in /proc/meminfo are in kB
		values[key] = val * 1024
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}

	total, ok := values["MemTotal"]
	if !ok || total == 0 {
		return 0, 0, fmt.Errorf("MemTotal missing from /proc/meminfo")
	}

	if avail, ok := values["MemAvailable"]; ok {
		if avail > total {
			avail = total
		}
		return total, total - avail, nil
	}

	free, ok := values["MemFree"]
	if !ok {
		return 0, 0, fmt.Errorf("insufficient memory info found in /proc/meminfo")
	}
	reclaimable := free + values["Buffers"] + values["Cached"]
	if reclaimable > total {
		reclaimable = total
	}
	return total, total - reclaimable, nil
}
