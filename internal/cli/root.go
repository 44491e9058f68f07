package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/aegisops/aegis/internal/config"
	"github.com/aegisops/aegis/internal/errors"
	"github.com/aegisops/aegis/internal/logger"
	"github.com/aegisops/aegis/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile      string
	simulateFlag string
	noColor      bool
	verbose      bool
)

// loadedConfig is the configuration resolved in PersistentPreRunE.
var loadedConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "aegis",
	Short: "Security operations dashboard",
	Long: `aegis is a terminal dashboard for routine host security work.

It shows live CPU and memory utilization and runs a fixed catalog of
operations: a Lynis audit, a ClamAV scan, SSH hardening and enabling the
UFW firewall. Off Linux (or with --simulate) every operation is simulated
and nothing on the host changes.

Run with no arguments to open the dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			ui.DisableColors()
		}
		if verbose {
			// The env logger reads this on every Debug call.
			if err := os.Setenv(logger.DebugEnvVar, "1"); err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig, "Failed to enable debug logging", "")
			}
		}

		// config subcommands must work with a broken file so it can be fixed.
		if isConfigCommand(cmd) {
			return nil
		}

		cfg, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
		if simulateFlag != "" {
			cfg.Simulation = simulateFlag
			if err := config.Validate(cfg); err != nil {
				return err
			}
		}
		applyColorMode(cfg.Dashboard.Color)
		loadedConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.config/aegis/config.yaml)")
	pf.StringVar(&simulateFlag, "simulate", "", "runner mode: auto, true or false (overrides config)")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	pf.Lookup("simulate").NoOptDefVal = "true"
}

// Config returns the configuration loaded for the running command.
func Config() *config.Config {
	if loadedConfig == nil {
		return config.DefaultConfig()
	}
	return loadedConfig
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(handleError(err))
	}
}

// handleError prints err and returns the process exit code.
func handleError(err error) int {
	var exitErr *exitCodeError
	if stderrors.As(err, &exitErr) {
		return exitErr.code
	}

	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" {
			fmt.Fprint(os.Stderr, errors.New(errors.ErrInput,
				fmt.Sprintf("Unknown command '%s'", name),
				"Run 'aegis --help' to see the available commands").Error())
			return 1
		}
	}

	if MachineMode() {
		_ = WriteJSONFromError(os.Stdout, err)
		return 1
	}

	fmt.Fprint(os.Stderr, err.Error())
	if _, ok := err.(*errors.Error); !ok {
		fmt.Fprintln(os.Stderr)
	}
	return 1
}

// exitCodeError ends the process with code after the command has already
// reported the failure itself.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var unknownPattern = regexp.MustCompile(`^unknown (command|flag|shorthand flag)`)

func isUnknownCommandError(err error) bool {
	return unknownPattern.MatchString(err.Error())
}

var unknownCommandPattern = regexp.MustCompile(`^unknown command "([^"]+)"`)

func extractUnknownCommand(err error) string {
	m := unknownCommandPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return ""
	}
	return m[1]
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return true
		}
	}
	return false
}

// applyColorMode maps the dashboard.color setting onto lipgloss. --no-color
// always wins.
func applyColorMode(mode string) {
	switch {
	case noColor || mode == "never":
		ui.DisableColors()
	case mode == "always":
		ui.ForceColors()
	}
}
