package cmd

import (
	"fmt"
	"os"

	"github.com/framecheck/framecheck/internal/di"
	"github.com/spf13/cobra"
)

var (
	// Container is the dependency injection container
	Container *di.Container

	// ConfigPath is the path to the configuration file
	ConfigPath string

	// LogLevel overrides the configured logging level
	LogLevel string

	// RootCmd is the root command for CLI
	RootCmd = &cobra.Command{
		Use:   "framecheck",
		Short: "framecheck - HTTP/1.x response framing server and wire verifier",
		Long: `framecheck serves files with explicit Content-Length, chunked or identity
framing depending on the request, and verifies from raw socket bytes which
framing a server actually put on the wire.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			Container = di.NewContainer()
			if err := Container.Initialize(ConfigPath, LogLevel); err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			return nil
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run executes the command line and closes the container whether or not the
// command failed
func run(args []string) error {
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	if Container != nil {
		Container.Close()
	}
	return err
}

func init() {
	// Add global flags
	RootCmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c", "", "Path to configuration file (default: ~/.framecheck/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Set logging level (debug, info, warn, error)")
}
