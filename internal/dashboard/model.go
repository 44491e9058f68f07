package dashboard

import (
	"context"
	"time"

	"github.com/aegisops/aegis/internal/runner"
	"github.com/aegisops/aegis/internal/ui"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTickRate renders at roughly 60 frames per second.
const DefaultTickRate = 16 * time.Millisecond

// Layout constants for the output pane.
const (
	minOutputHeight = 3
	// chrome is the header, tabs, operation list and footer around the pane.
	chrome = 16
)

// ModelOptions configures the Bubble Tea adapter.
type ModelOptions struct {
	TickRate time.Duration
	Theme    Theme
	// Mode is the runner badge shown in the header, e.g. "SIMULATION".
	Mode    string
	Version string
	// Context is passed to running operations. Defaults to Background.
	Context context.Context
}

// Model adapts a Controller to Bubble Tea. Key presses, ticks and operation
// completions arrive as messages on the update loop, which is the only place
// the controller is touched.
type Model struct {
	ctrl     *Controller
	theme    Theme
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	output   viewport.Model
	tickRate time.Duration
	mode     string
	version  string
	ctx      context.Context

	width     int
	height    int
	startedAt time.Time
	doneAt    time.Time
}

// tickMsg signals one iteration of the render loop.
type tickMsg time.Time

// operationDoneMsg carries a finished operation's result back to the loop.
type operationDoneMsg struct {
	index  int
	result runner.Result
}

// NewModel wraps ctrl in a Bubble Tea model.
func NewModel(ctrl *Controller, opts ModelOptions) Model {
	rate := opts.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	theme := opts.Theme
	if theme.Thresholds == (ui.Thresholds{}) {
		theme = DefaultTheme()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	h := help.New()
	h.Styles.ShortKey = theme.Value
	h.Styles.ShortDesc = theme.Muted
	h.Styles.FullKey = theme.Value
	h.Styles.FullDesc = theme.Muted

	return Model{
		ctrl:     ctrl,
		theme:    theme,
		keys:     keys,
		help:     h,
		spinner:  ui.NewSpinner(),
		output:   viewport.New(80, minOutputHeight),
		tickRate: rate,
		mode:     opts.Mode,
		version:  opts.Version,
		ctx:      ctx,
	}
}

// Controller exposes the wrapped state machine.
func (m Model) Controller() *Controller {
	return m.ctrl
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.output.Width = max(msg.Width-4, 20)
		m.output.Height = max(msg.Height-chrome, minOutputHeight)

	case tickMsg:
		m.ctrl.Tick()
		return m, m.tickCmd()

	case operationDoneMsg:
		m.ctrl.Complete(msg.index, msg.result)
		m.doneAt = time.Now()
		m.output.SetContent(msg.result.Output())
		m.output.GotoTop()

	case spinner.TickMsg:
		// Let the spinner chain lapse when nothing is running.
		if _, running := m.ctrl.Running(); !running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Quit()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.SwitchView):
		m.ctrl.SwitchView()

	case key.Matches(msg, m.keys.Up):
		m.ctrl.MoveUp()

	case key.Matches(msg, m.keys.Down):
		m.ctrl.MoveDown()

	case key.Matches(msg, m.keys.Execute):
		job, ok := m.ctrl.Execute()
		if !ok {
			return m, nil
		}
		m.startedAt = time.Now()
		return m, tea.Batch(m.runCmd(job), m.spinner.Tick)

	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}

	// Anything else is ignored.
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.ctrl.Quitting() {
		return ""
	}
	return m.render()
}

// tickCmd returns a command that sends a tick after the tick rate.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tickRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runCmd runs job on Bubble Tea's command goroutine and reports back with
// an operationDoneMsg.
func (m Model) runCmd(job Job) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return operationDoneMsg{index: job.Index, result: job.Run(ctx)}
	}
}
