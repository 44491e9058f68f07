package telemetry

import (
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
)

// hostStats fills the disk and uptime fields every platform sampler shares.
// A nil function leaves its fields zero, as does a failed read: neither is
// worth dropping the CPU and memory reading for.
type hostStats struct {
	diskPath string
	disk     func(path string) (*disk.UsageStat, error)
	uptime   func() (uint64, error)
}

func defaultHostStats(diskPath string) hostStats {
	return hostStats{
		diskPath: diskPath,
		disk:     disk.Usage,
		uptime:   host.Uptime,
	}
}

func (h hostStats) fill(s *Sample) {
	if h.disk != nil && h.diskPath != "" {
		if u, err := h.disk(h.diskPath); err == nil && u.Total > 0 {
			s.DiskTotalBytes = u.Total
			s.DiskUsedBytes = u.Used
			s.DiskFreeBytes = u.Free
			s.DiskPercent = clampPercent(u.UsedPercent)
		}
	}
	if h.uptime != nil {
		if secs, err := h.uptime(); err == nil {
			s.Uptime = time.Duration(secs) * time.Second
		}
	}
}
