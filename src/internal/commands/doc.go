// Package commands implements CLI command handlers for cdnsift.
//
// This package provides the command-line interface layer for the application.
// The default command is the scan pipeline (hosts on stdin, verdicts on
// stdout); refresh and serve are explicit subcommands. Each command
// implements the Runner interface.
//
// # Command Structure
//
// All commands follow a consistent pattern:
//   - Init(): Parse arguments and load configuration
//   - Run(): Execute the command
//   - Name(): Return command name for routing
//
// # Available Commands
//
//   - scan: Classify hosts from stdin against the CDN CIDR cache (default)
//   - refresh: Force a CIDR cache refresh from all providers
//   - serve: Run the HTTP API server
//
// # Example Usage
//
// Creating and running a command:
//
//	cmd := commands.CreateRefreshCommand()
//	ctx := &commands.AppContext{
//	    ConfigPath: "/home/user/.config/cdnsift/config.yaml",
//	}
//	if err := cmd.Init(nil, ctx); err != nil {
//	    log.Fatalf("%v", err)
//	}
//	if err := cmd.Run(); err != nil {
//	    log.Fatalf("%v", err)
//	}
package commands
