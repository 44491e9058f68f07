package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// addJSONFlag registers --json, which switches the command to machine mode.
func addJSONFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&machineMode, "json", false, "output in JSON format")
}

// interactive reports whether prompts can be shown.
func interactive() bool {
	return !machineMode && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
