package telemetry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cpuSample(v float64) Sample {
	return Sample{CPUPercent: v, MemPercent: v / 2}
}

func TestNewHistory(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"default size", 0, DefaultHistorySize},
		{"negative size", -1, DefaultHistorySize},
		{"custom size", 60, 60},
		{"single slot", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(tt.size)
			assert.Equal(t, tt.expected, h.Cap())
			assert.Equal(t, 0, h.Len())
		})
	}
}

func TestHistory_PushPreservesOrder(t *testing.T) {
	h := NewHistory(10)

	for i := 0; i < 5; i++ {
		h.Push(cpuSample(float64(i * 10)))
	}

	assert.Equal(t, 5, h.Len())
	assert.Equal(t, []float64{0, 10, 20, 30, 40}, h.CPU(10))
	assert.Equal(t, []float64{0, 5, 10, 15, 20}, h.Memory(10))
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(5)

	for i := 0; i < 8; i++ {
		h.Push(cpuSample(float64(i)))
		assert.LessOrEqual(t, h.Len(), h.Cap())
	}

	assert.Equal(t, 5, h.Len())
	assert.Equal(t, []float64{3, 4, 5, 6, 7}, h.CPU(5))

	// One more push drops exactly the oldest (3).
	h.Push(cpuSample(8))
	assert.Equal(t, []float64{4, 5, 6, 7, 8}, h.CPU(5))
}

func TestHistory_PartialReads(t *testing.T) {
	h := NewHistory(10)
	assert.Nil(t, h.CPU(5))

	for i := 0; i < 7; i++ {
		h.Push(cpuSample(float64(i)))
	}

	assert.Equal(t, []float64{4, 5, 6}, h.CPU(3))
	assert.Nil(t, h.CPU(0))
	assert.Nil(t, h.CPU(-1))
	assert.Len(t, h.CPU(100), 7)
}

func TestHistory_Last(t *testing.T) {
	h := NewHistory(3)

	_, ok := h.Last()
	assert.False(t, ok)

	for i := 1; i <= 4; i++ {
		h.Push(cpuSample(float64(i)))
	}

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, 4.0, last.CPUPercent)
}

func TestHistory_Samples(t *testing.T) {
	h := NewHistory(2)
	assert.Nil(t, h.Samples())

	h.Push(cpuSample(1))
	h.Push(cpuSample(2))
	h.Push(cpuSample(3))

	samples := h.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, 2.0, samples[0].CPUPercent)
	assert.Equal(t, 3.0, samples[1].CPUPercent)
}

func TestHistory_ConcurrentAccess(t *testing.T) {
	h := NewHistory(50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Push(cpuSample(float64(n)))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = h.CPU(20)
				_, _ = h.Last()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, h.Len())
}
