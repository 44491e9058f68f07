package cli

import (
	"context"
	stderrors "errors"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/aegisops/aegis/internal/dashboard"
	"github.com/aegisops/aegis/internal/errors"
	"github.com/aegisops/aegis/internal/logger"
	"github.com/aegisops/aegis/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// debugLogFile receives log output while the dashboard owns the terminal.
const debugLogFile = "aegis-debug.log"

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive operations dashboard",
	Long: `Open the full-screen dashboard.

The Dashboard view charts CPU and memory utilization. The Operations view
lists the catalog; pressing enter runs the selected operation in the
background while the chart keeps updating.

Keyboard shortcuts:
  tab          Switch between Dashboard and Operations
  up/k         Select previous operation
  down/j       Select next operation
  enter        Run selected operation
  pgup/pgdn    Scroll the result output
  ?            Toggle help
  q / Ctrl+C   Quit

With AEGIS_DEBUG set (or --verbose), logs go to aegis-debug.log in the
system temp directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// dashboardCommand runs the Bubble Tea program until the operator quits.
func dashboardCommand(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrInput,
			"The dashboard needs an interactive terminal",
			"Use 'aegis status' or 'aegis run <operation>' from scripts")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	closeLog, err := redirectLogs()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := Config()
	a, err := newApp(cfg, logger.Default())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := dashboard.NewController(a.catalog, a.sampler, dashboard.Options{
		SampleEvery: cfg.Dashboard.SampleEvery,
		HistorySize: cfg.Dashboard.HistorySize,
		Logger:      logger.Default(),
	})
	model := dashboard.NewModel(ctrl, dashboard.ModelOptions{
		TickRate: cfg.Dashboard.TickRate,
		Theme: dashboard.NewTheme(ui.Thresholds{
			Warning:  cfg.Dashboard.Thresholds.Warning,
			Critical: cfg.Dashboard.Thresholds.Critical,
		}),
		Mode:    a.modeLabel(),
		Version: formatVersion(version),
		Context: ctx,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !isProgramKilled(err) {
		return errors.WrapWithCode(err, errors.ErrExec,
			"The dashboard stopped unexpectedly",
			"Re-run with --verbose and check "+filepath.Join(os.TempDir(), debugLogFile))
	}
	return nil
}

// redirectLogs keeps log output off the alternate screen: to a file in debug
// mode, otherwise nowhere.
func redirectLogs() (func(), error) {
	if !logger.DebugEnabled() {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}

	f, err := tea.LogToFile(filepath.Join(os.TempDir(), debugLogFile), "aegis")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to open the debug log",
			"Check that the temp directory is writable")
	}
	return func() {
		_ = f.Close()
		log.SetOutput(os.Stderr)
	}, nil
}

// isProgramKilled reports whether the program ended because its context
// was cancelled, which is a normal shutdown.
func isProgramKilled(err error) bool {
	return stderrors.Is(err, tea.ErrProgramKilled)
}
