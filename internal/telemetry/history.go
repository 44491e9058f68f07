package telemetry

import "sync"

// DefaultHistorySize is the number of samples kept when no size is configured.
const DefaultHistorySize = 120

// History is a fixed-capacity ring buffer of samples. Push is the only way
// to add data; once full, each push evicts the oldest sample.
type History struct {
	mu    sync.RWMutex
	data  []Sample
	head  int
	count int
}

// NewHistory creates a history holding at most size samples.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		data: make([]Sample, size),
	}
}

// Push appends s, evicting the oldest sample when full.
func (h *History) Push(s Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.data[h.head] = s
	h.head = (h.head + 1) % len(h.data)
	if h.count < len(h.data) {
		h.count++
	}
}

// Len returns the number of stored samples.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Cap returns the fixed capacity.
func (h *History) Cap() int {
	return len(h.data)
}

// Last returns the newest sample.
func (h *History) Last() (Sample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.count == 0 {
		return Sample{}, false
	}
	return h.data[(h.head-1+len(h.data))%len(h.data)], true
}

// Samples returns all stored samples, oldest first.
func (h *History) Samples() []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastLocked(h.count)
}

// CPU returns the last count CPU percentages, oldest first.
func (h *History) CPU(count int) []float64 {
	return h.project(count, func(s Sample) float64 { return s.CPUPercent })
}

// Memory returns the last count memory percentages, oldest first.
func (h *History) Memory(count int) []float64 {
	return h.project(count, func(s Sample) float64 { return s.MemPercent })
}

func (h *History) project(count int, field func(Sample) float64) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	samples := h.lastLocked(count)
	if samples == nil {
		return nil
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = field(s)
	}
	return out
}

// lastLocked returns the last count samples in chronological order.
// Must be called with h.mu held.
func (h *History) lastLocked(count int) []Sample {
	if count <= 0 || h.count == 0 {
		return nil
	}
	if count > h.count {
		count = h.count
	}

	size := len(h.data)
	// head is the next write slot, so the newest value sits at head-1.
	start := (h.head - count + size) % size

	out := make([]Sample, count)
	for i := 0; i < count; i++ {
		out[i] = h.data[(start+i)%size]
	}
	return out
}
