package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aegisops/aegis/internal/catalog"
	"github.com/aegisops/aegis/internal/logger"
	"github.com/aegisops/aegis/internal/ui"
	"github.com/spf13/cobra"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the operation catalog",
	Long: `List every operation aegis can run, in dashboard order, with the exact
command each one would execute in the current runner mode.

Examples:
  aegis ops
  aegis ops --simulate
  aegis ops --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(Config(), logger.Noop())
		if err != nil {
			return err
		}
		return writeOps(os.Stdout, a)
	},
}

func init() {
	addJSONFlag(opsCmd)
	rootCmd.AddCommand(opsCmd)
}

// OperationOutput is the JSON form of a catalog entry.
type OperationOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Command     string `json:"command"`
	Mutates     bool   `json:"mutates"`
}

func operationOutput(op catalog.Operation) OperationOutput {
	return OperationOutput{
		ID:          op.ID,
		Title:       op.Title,
		Description: op.Description,
		Kind:        op.Kind.String(),
		Command:     op.CommandLine(),
		Mutates:     op.Mutates(),
	}
}

func writeOps(w io.Writer, a *app) error {
	ops := a.catalog.All()

	if MachineMode() {
		out := make([]OperationOutput, len(ops))
		for i, op := range ops {
			out[i] = operationOutput(op)
		}
		return WriteJSONSuccess(w, out)
	}

	rows := make([][]string, len(ops))
	for i, op := range ops {
		rows[i] = []string{op.ID, op.Title, op.Kind.String(), op.CommandLine()}
	}

	fmt.Fprint(w, ui.RenderHeader(ui.HeaderInfo{
		Version: formatVersion(version),
		Tagline: fmt.Sprintf("%d operations, in dashboard order", len(ops)),
		Mode:    a.modeLabel(),
	}))
	fmt.Fprintln(w, ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "ID", Width: 16},
		{Title: "Title", Width: 22},
		{Title: "Kind", Width: 7},
		{Title: "Command", Width: 56},
	}, rows))
	return nil
}
