package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// Thresholds are the utilization percentages where a chart turns from
// green to yellow (Warning) and from yellow to red (Critical).
type Thresholds struct {
	Warning  float64
	Critical float64
}

// DefaultThresholds matches the dashboard's default config.
var DefaultThresholds = Thresholds{Warning: 70, Critical: 90}

// RenderSparkline draws percentage data (0-100) as one block per point,
// keeping only the most recent width points. The whole line takes the colour
// of the latest value. Out-of-range values are clamped.
func RenderSparkline(data []float64, width int, th Thresholds) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)
	for _, v := range data {
		sb.WriteRune(sparklineBlockRunes[sparklineLevel(v)])
	}

	last := data[len(data)-1]
	return lipgloss.NewStyle().
		Foreground(ThresholdColor(last, th.Warning, th.Critical)).
		Render(sb.String())
}

// sparklineLevel maps a percentage onto a block index.
func sparklineLevel(percent float64) int {
	top := len(sparklineBlockRunes) - 1
	switch {
	case percent <= 0:
		return 0
	case percent >= 100:
		return top
	}
	return int(percent / 100 * float64(top))
}
