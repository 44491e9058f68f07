package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aegisops/aegis/internal/catalog"
	"github.com/aegisops/aegis/internal/errors"
	"github.com/aegisops/aegis/internal/logger"
	"github.com/aegisops/aegis/internal/runner"
	"github.com/aegisops/aegis/internal/ui"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var runYes bool

var runCmd = &cobra.Command{
	Use:   "run [operation]",
	Short: "Run one catalog operation",
	Long: `Run a single operation without the dashboard and print its result.

The operation is named by ID or title (see 'aegis ops'). Without an
argument you are asked to pick one. Operations that change the host ask
for confirmation in ACTIVE mode unless --yes is given.

Exits 1 when the operation fails.

Examples:
  aegis run security-scan
  aegis run "Harden SSH" --simulate
  aegis run enable-firewall --yes --json`,
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return []string{catalog.SecurityScan, catalog.MalwareScan, catalog.HardenSSH, catalog.EnableFirewall},
			cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(Config(), logger.Default())
		if err != nil {
			return err
		}

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		op, err := pickOperation(a.catalog, name)
		if err != nil {
			return err
		}

		if op.Mutates() && !a.runner.Simulated() && !runYes {
			ok, err := confirmOperation(op)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		return runOperation(cmd.Context(), os.Stdout, op)
	},
}

func init() {
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "skip the confirmation for operations that change the host")
	addJSONFlag(runCmd)
	rootCmd.AddCommand(runCmd)
}

// RunOutput is the JSON form of a finished operation.
type RunOutput struct {
	Operation OperationOutput `json:"operation"`
	Success   bool            `json:"success"`
	ExitCode  int             `json:"exit_code"`
	Duration  float64         `json:"duration_seconds"`
	Score     *int            `json:"score,omitempty"`
	Stdout    string          `json:"stdout"`
	Stderr    string          `json:"stderr"`
}

// pickOperation resolves name, or prompts when name is empty.
func pickOperation(cat *catalog.Catalog, name string) (catalog.Operation, error) {
	if name != "" {
		_, op, err := cat.Find(name)
		return op, err
	}

	if !interactive() {
		return catalog.Operation{}, errors.New(errors.ErrInput,
			"No operation given",
			"Pass an operation ID, e.g. 'aegis run security-scan' (see 'aegis ops')")
	}

	ops := cat.All()
	options := make([]huh.Option[string], len(ops))
	for i, op := range ops {
		options[i] = huh.NewOption(op.Title+" - "+op.Description, op.ID)
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which operation?").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return catalog.Operation{}, errors.WrapWithCode(err, errors.ErrInput,
			"No operation selected",
			"Pass the operation ID as an argument instead")
	}

	_, op, err := cat.Find(selected)
	return op, err
}

// confirmOperation asks before a real run changes the host.
func confirmOperation(op catalog.Operation) (bool, error) {
	if !interactive() {
		return false, errors.New(errors.ErrInput,
			fmt.Sprintf("'%s' changes this host and needs confirmation", op.Title),
			"Re-run with --yes, or use --simulate to try it safely")
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Run '%s' on this host?", op.Title)).
				Description("$ " + op.CommandLine()).
				Affirmative("Run").
				Negative("Cancel").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrInput,
			"Failed to get confirmation",
			"Re-run with --yes to skip the prompt")
	}
	return confirmed, nil
}

// runOperation invokes op, prints the result and returns an exitCodeError
// when it failed.
func runOperation(ctx context.Context, w io.Writer, op catalog.Operation) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if !MachineMode() {
		fmt.Fprintln(w, ui.MutedStyle().Render("$ "+op.CommandLine()))
	}

	res := op.Invoke(ctx)

	if MachineMode() {
		out := RunOutput{
			Operation: operationOutput(op),
			Success:   res.Success,
			ExitCode:  res.ExitCode,
			Duration:  res.Seconds(),
			Stdout:    res.Stdout,
			Stderr:    res.Stderr,
		}
		if op.Kind == catalog.KindScan {
			score := catalog.Score(res)
			out.Score = &score
		}
		if res.Success {
			return WriteJSONSuccess(w, out)
		}
		if err := WriteJSONFailure(w, out, ErrCodeCommandFailed, firstLine(res.Stderr)); err != nil {
			return err
		}
		return &exitCodeError{code: 1}
	}

	printResult(w, op, res)
	if !res.Success {
		return &exitCodeError{code: 1}
	}
	return nil
}

func printResult(w io.Writer, op catalog.Operation, res runner.Result) {
	if out := strings.TrimRight(res.Output(), "\n"); out != "" {
		fmt.Fprintln(w, out)
	}
	fmt.Fprintln(w)

	timing := ui.MutedStyle().Render(fmt.Sprintf("(%.2fs)", res.Seconds()))
	if res.Success {
		line := ui.SuccessStyle().Render(ui.SymbolSuccess) + " " + op.Title + " completed " + timing
		if op.Kind == catalog.KindScan {
			line += ui.MutedStyle().Render(fmt.Sprintf("  score %d", catalog.Score(res)))
		}
		fmt.Fprintln(w, line)
		return
	}
	fmt.Fprintln(w, ui.ErrorStyle().Render(ui.SymbolFail)+" "+op.Title+
		fmt.Sprintf(" failed with exit code %d ", res.ExitCode)+timing)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
