package telemetry

import (
	"time"

	"github.com/aegisops/aegis/internal/errors"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// PortableSampler reads utilization through gopsutil on hosts without /proc.
// CPU is the busy share since the previous call; the constructor takes the
// first reading so the dashboard never charts the average since boot.
type PortableSampler struct {
	cpu    func() (float64, error)
	memory func() (*mem.VirtualMemoryStat, error)
	host   hostStats
	now    func() time.Time
}

// NewPortableSampler creates a sampler reporting disk usage for diskPath.
func NewPortableSampler(diskPath string) *PortableSampler {
	p := &PortableSampler{
		cpu:    aggregateCPUPercent,
		memory: mem.VirtualMemory,
		host:   defaultHostStats(diskPath),
		now:    time.Now,
	}
	_, _ = p.cpu()
	return p
}

func aggregateCPUPercent() (float64, error) {
	pcts, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(pcts) == 0 {
		return 0, errors.New(errors.ErrTelemetry, "No CPU utilization reported", "")
	}
	return pcts[0], nil
}

// Sample returns the current utilization.
func (p *PortableSampler) Sample() (Sample, error) {
	busy, err := p.cpu()
	if err != nil {
		return Sample{}, errors.WrapWithCode(err, errors.ErrTelemetry,
			"Couldn't read CPU utilization", "")
	}
	vm, err := p.memory()
	if err != nil {
		return Sample{}, errors.WrapWithCode(err, errors.ErrTelemetry,
			"Couldn't read memory statistics", "")
	}

	s := Sample{
		CPUPercent:    clampPercent(busy),
		MemPercent:    clampPercent(vm.UsedPercent),
		MemUsedBytes:  vm.Used,
		MemTotalBytes: vm.Total,
		Time:          p.now(),
	}
	p.host.fill(&s)
	return s, nil
}
