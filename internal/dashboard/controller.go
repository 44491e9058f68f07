package dashboard

import (
	"context"

	"github.com/aegisops/aegis/internal/catalog"
	"github.com/aegisops/aegis/internal/logger"
	"github.com/aegisops/aegis/internal/runner"
	"github.com/aegisops/aegis/internal/telemetry"
)

// View is the active dashboard screen.
type View int

const (
	ViewDashboard View = iota
	ViewOperations
)

// String returns a human-readable view name.
func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewOperations:
		return "Operations"
	default:
		return "unknown"
	}
}

// DefaultSampleEvery samples telemetry once every 10 ticks (~6 Hz at 16ms).
const DefaultSampleEvery = 10

// Options configures a Controller.
type Options struct {
	// SampleEvery samples telemetry when the tick count is a multiple of it.
	// Values below 1 use DefaultSampleEvery.
	SampleEvery int
	// HistorySize caps the telemetry history. Values below 1 use
	// telemetry.DefaultHistorySize.
	HistorySize int
	Logger      logger.Logger
}

// Job is an operation that Execute has started but not yet finished.
// Run it off the input loop and hand the result to Complete.
type Job struct {
	Index     int
	Operation catalog.Operation
}

// Run invokes the operation.
func (j Job) Run(ctx context.Context) runner.Result {
	return j.Operation.Invoke(ctx)
}

// Controller owns the dashboard state. Every transition happens through its
// methods; it does no I/O of its own apart from telemetry sampling on Tick.
// It is not safe for concurrent use: the Bubble Tea update loop is its only
// caller.
type Controller struct {
	catalog     *catalog.Catalog
	sampler     telemetry.Sampler
	history     *telemetry.History
	sampleEvery uint64
	log         logger.Logger

	view     View
	selected int
	ticks    uint64
	quitting bool

	running      bool
	runningIndex int

	lastResult *runner.Result
	lastIndex  int

	sampleErr error
}

// NewController creates a controller on the Dashboard view with the first
// operation selected.
func NewController(cat *catalog.Catalog, sampler telemetry.Sampler, opts Options) *Controller {
	every := opts.SampleEvery
	if every < 1 {
		every = DefaultSampleEvery
	}
	size := opts.HistorySize
	if size < 1 {
		size = telemetry.DefaultHistorySize
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	return &Controller{
		catalog:     cat,
		sampler:     sampler,
		history:     telemetry.NewHistory(size),
		sampleEvery: uint64(every),
		log:         log,
		view:        ViewDashboard,
	}
}

// SwitchView toggles between the Dashboard and Operations views.
func (c *Controller) SwitchView() {
	if c.view == ViewDashboard {
		c.view = ViewOperations
	} else {
		c.view = ViewDashboard
	}
}

// MoveUp selects the previous operation. No-op at the top or outside the
// Operations view.
func (c *Controller) MoveUp() {
	if c.view != ViewOperations || c.selected <= 0 {
		return
	}
	c.selected--
}

// MoveDown selects the next operation. No-op at the bottom or outside the
// Operations view.
func (c *Controller) MoveDown() {
	if c.view != ViewOperations || c.selected >= c.catalog.Len()-1 {
		return
	}
	c.selected++
}

// Execute starts the selected operation and returns the job to run.
// It returns false, changing nothing, when the Operations view is not
// active, the catalog is empty, or another operation is still running.
func (c *Controller) Execute() (Job, bool) {
	if c.view != ViewOperations || c.running || c.catalog.Len() == 0 {
		return Job{}, false
	}

	op := c.catalog.Get(c.selected)
	c.running = true
	c.runningIndex = c.selected
	c.log.Info("executing %s: %s", op.ID, op.CommandLine())
	return Job{Index: c.selected, Operation: op}, true
}

// Complete stores the result of a finished job as the last result.
func (c *Controller) Complete(index int, res runner.Result) {
	c.running = false
	c.lastResult = &res
	c.lastIndex = index

	if res.Success {
		c.log.Info("operation %d finished in %.2fs", index, res.Seconds())
	} else {
		c.log.Warn("operation %d failed (exit %d): %s", index, res.ExitCode, res.Stderr)
	}
}

// Tick advances the tick counter and samples telemetry when the count is a
// multiple of the sample interval. It reports whether a sample was pushed.
// A failed sample is skipped and remembered for display.
func (c *Controller) Tick() bool {
	c.ticks++
	if c.ticks%c.sampleEvery != 0 {
		return false
	}

	s, err := c.sampler.Sample()
	if err != nil {
		if c.sampleErr == nil {
			c.log.Debug("telemetry sample skipped: %v", err)
		}
		c.sampleErr = err
		return false
	}
	c.sampleErr = nil
	c.history.Push(s)
	return true
}

// Quit marks the control loop as finished.
func (c *Controller) Quit() {
	c.quitting = true
}

func (c *Controller) View() View { return c.view }
func (c *Controller) Selected() int { return c.selected }
func (c *Controller) Ticks() uint64 { return c.ticks }
func (c *Controller) Quitting() bool { return c.quitting }
func (c *Controller) Catalog() *catalog.Catalog { return c.catalog }
func (c *Controller) History() *telemetry.History { return c.history }

// SampleError returns the most recent telemetry failure, or nil once a
// sample succeeds again.
func (c *Controller) SampleError() error { return c.sampleErr }

// Running returns the index of the in-flight operation, if any.
func (c *Controller) Running() (int, bool) {
	return c.runningIndex, c.running
}

// LastResult returns the most recent completed result and the index of the
// operation that produced it. It survives navigation until the next
// Complete overwrites it.
func (c *Controller) LastResult() (runner.Result, int, bool) {
	if c.lastResult == nil {
		return runner.Result{}, 0, false
	}
	return *c.lastResult, c.lastIndex, true
}
