package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/aegisops/aegis/internal/catalog"
	"github.com/aegisops/aegis/internal/errors"
	"github.com/aegisops/aegis/internal/runner"
	"github.com/aegisops/aegis/internal/telemetry"
	"github.com/aegisops/aegis/internal/ui"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// defaultChartWidth is used before the first WindowSizeMsg arrives.
const defaultChartWidth = 60

func (m Model) render() string {
	sections := []string{m.renderHeader()}

	switch m.ctrl.View() {
	case ViewOperations:
		sections = append(sections, m.renderOperations(), m.renderResult())
	default:
		sections = append(sections, m.renderTelemetry(), m.renderLastRun())
	}

	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("AEGIS")
	if m.version != "" {
		title += " " + m.theme.Muted.Render(m.version)
	}
	if m.mode != "" {
		title += " " + ui.ModeBadge(m.mode)
	}

	tabs := make([]string, 0, 2)
	for _, v := range []View{ViewDashboard, ViewOperations} {
		style := m.theme.Tab
		if v == m.ctrl.View() {
			style = m.theme.ActiveTab
		}
		tabs = append(tabs, style.Render(v.String()))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", strings.Join(tabs, ""))
}

func (m Model) renderTelemetry() string {
	hist := m.ctrl.History()
	var lines []string
	lines = append(lines, m.theme.Heading.Render("System"))

	last, ok := hist.Last()
	switch {
	case ok:
		lines = append(lines,
			m.field("CPU", m.theme.Percent(last.CPUPercent)+"  "+
				ui.RenderSparkline(hist.CPU(hist.Cap()), m.chartWidth(), m.theme.Thresholds)),
			m.field("Memory", m.theme.Percent(last.MemPercent)+"  "+
				ui.RenderSparkline(hist.Memory(hist.Cap()), m.chartWidth(), m.theme.Thresholds)),
			m.field("", m.theme.Muted.Render(last.MemoryString())),
			m.field("Disk", m.diskValue(last)),
			m.field("Uptime", m.theme.Value.Render(last.UptimeString())),
		)
	case m.ctrl.SampleError() != nil:
		lines = append(lines, m.theme.Warning.Render(ui.SymbolWarning+" telemetry unavailable: "+errors.Message(m.ctrl.SampleError())))
	default:
		lines = append(lines, m.theme.Muted.Render("waiting for first sample..."))
	}

	lines = append(lines, m.field("Samples", m.theme.Muted.Render(fmt.Sprintf("%d/%d", hist.Len(), hist.Cap()))))
	return m.theme.Panel.Render(strings.Join(lines, "\n"))
}

// renderLastRun summarises the last result on the Dashboard view.
func (m Model) renderLastRun() string {
	if idx, running := m.ctrl.Running(); running {
		op := m.ctrl.Catalog().Get(idx)
		return m.field("Running", m.spinner.View()+" "+op.Title)
	}

	res, idx, ok := m.ctrl.LastResult()
	if !ok {
		return m.field("Last run", m.theme.Muted.Render("none yet, press tab to pick an operation"))
	}
	op := m.ctrl.Catalog().Get(idx)
	return m.field("Last run", m.statusLine(op, res))
}

func (m Model) renderOperations() string {
	cat := m.ctrl.Catalog()
	runningIdx, running := m.ctrl.Running()

	var lines []string
	lines = append(lines, m.theme.Heading.Render("Operations"))
	for i, op := range cat.All() {
		// Pad before styling so escape codes don't count toward the width.
		padded := fmt.Sprintf("%-24s", op.Title)
		cursor := "  "
		title := m.theme.Value.Render(padded)
		if i == m.ctrl.Selected() {
			cursor = m.theme.Cursor.Render(ui.SymbolCursor + " ")
			title = m.theme.Selected.Render(padded)
		}

		marker := " "
		if running && i == runningIdx {
			marker = m.spinner.View()
		}

		lines = append(lines, fmt.Sprintf("%s%s %s %s", cursor, marker, title, m.theme.Muted.Render(op.Description)))
	}

	selected := cat.Get(m.ctrl.Selected())
	lines = append(lines, "", m.theme.Muted.Render("$ "+selected.CommandLine()))
	return m.theme.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderResult() string {
	if idx, running := m.ctrl.Running(); running {
		op := m.ctrl.Catalog().Get(idx)
		elapsed := time.Since(m.startedAt).Truncate(100 * time.Millisecond)
		return m.theme.Panel.Render(fmt.Sprintf("%s Running %s... %s", m.spinner.View(), op.Title, m.theme.Muted.Render(elapsed.String())))
	}

	res, idx, ok := m.ctrl.LastResult()
	if !ok {
		return m.theme.Panel.Render(m.theme.Muted.Render("Press enter to run the selected operation."))
	}

	op := m.ctrl.Catalog().Get(idx)
	header := m.statusLine(op, res)
	return m.theme.Panel.Render(header + "\n\n" + m.output.View())
}

// statusLine is the one-line outcome of a run: symbol, title, score for
// scans, duration and how long ago it finished.
func (m Model) statusLine(op catalog.Operation, res runner.Result) string {
	var b strings.Builder
	if res.Success {
		b.WriteString(m.theme.Success.Render(ui.SymbolSuccess))
	} else {
		b.WriteString(m.theme.Failure.Render(ui.SymbolFail))
	}
	b.WriteString(" ")
	b.WriteString(op.Title)

	if op.Kind == catalog.KindScan {
		b.WriteString(m.theme.Muted.Render(fmt.Sprintf("  score %d", catalog.Score(res))))
	}
	if !res.Success {
		b.WriteString(m.theme.Muted.Render(fmt.Sprintf("  exit %d", res.ExitCode)))
	}
	b.WriteString(m.theme.Muted.Render(fmt.Sprintf("  %.2fs", res.Seconds())))
	if !m.doneAt.IsZero() {
		b.WriteString(m.theme.Muted.Render("  " + humanize.Time(m.doneAt)))
	}
	return b.String()
}

// diskValue shows root filesystem usage, or n/a when it couldn't be read.
func (m Model) diskValue(s telemetry.Sample) string {
	if s.DiskTotalBytes == 0 {
		return m.theme.Muted.Render(s.DiskString())
	}
	return m.theme.Percent(s.DiskPercent) + "  " +
		m.theme.Muted.Render(s.DiskString()+", "+humanize.Bytes(s.DiskFreeBytes)+" free")
}

func (m Model) field(label, value string) string {
	return m.theme.Label.Render(label) + value
}

func (m Model) chartWidth() int {
	if m.width == 0 {
		return defaultChartWidth
	}
	// Leave room for the panel border, label and percentage.
	return max(m.width-24, 10)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%5.1f%%", v)
}
