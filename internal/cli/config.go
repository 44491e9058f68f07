package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aegisops/aegis/internal/config"
	"github.com/aegisops/aegis/internal/errors"
	"github.com/aegisops/aegis/internal/ui"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the aegis config file",
	Long: `Create, inspect and edit ~/.config/aegis/config.yaml (or the file given
with --config). Every key can also be overridden with an AEGIS_ environment
variable, e.g. AEGIS_SIMULATION=true.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	Long: `Write a config file containing every setting at its default value.

Examples:
  aegis config init
  aegis config init --force
  aegis --config ./aegis.yaml config init`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInit(os.Stdout, configTarget(), configInitForce)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting, keeping comments",
	Long: `Set a single key in the config file. Keys use dotted form.

Examples:
  aegis config set simulation true
  aegis config set dashboard.sample_every 5
  aegis config set dashboard.thresholds.critical 95`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.Keys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configTarget()
		if err := config.Set(path, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("%s %s = %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), args[0], args[1])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Print the configuration after defaults, the file and AEGIS_ overrides are applied.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(configTarget())
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd, configSetCmd, configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configTarget is --config when given, else the default location.
func configTarget() string {
	if cfgFile != "" {
		return config.ExpandTilde(cfgFile)
	}
	return config.DefaultPath()
}

// configInit writes the default config to path.
func configInit(w io.Writer, path string, force bool) error {
	if path == "" {
		return errors.New(errors.ErrConfig,
			"Couldn't work out where to put the config file",
			"Pass --config with an explicit path")
	}

	if _, err := os.Stat(path); err == nil && !force {
		if !interactive() {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("'%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	if err := config.Save(config.DefaultConfig(), path); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Wrote %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), path)
	return nil
}
