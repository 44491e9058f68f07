// Package cli implements the aegis command-line interface.
//
// The root command with no subcommand opens the dashboard. Every other
// command is a one-shot front-end over the same runner, catalog and
// telemetry packages the dashboard uses:
//
//	aegis [dashboard]        - Interactive operations dashboard
//	aegis ops                - List the operation catalog
//	aegis run [operation]    - Run one operation and print its result
//	aegis status             - Runner mode, telemetry and tool availability
//	aegis config init|set|show|path
//	aegis version
//	aegis completion <shell>
//
// Global flags (--config, --simulate, --no-color, --verbose) live on the
// root command. Configuration is loaded once in PersistentPreRunE and kept
// in the package-level state read through Config().
//
// Errors returned from commands are *errors.Error values whose formatted
// text (message, cause, suggestion) is printed by Execute before exiting 1.
package cli
