package cmd

import (
	"fmt"
	"strings"

	"github.com/framecheck/framecheck/internal/application/service"
	"github.com/spf13/cobra"
)

// configCmd is the command to manage configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage framecheck configuration.`,
}

// configShowCmd is the command to display configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration",
	Long:  `Display framecheck configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		c := Container.Config

		fmt.Println("framecheck Configuration:")
		fmt.Printf("Log Level: %s\n", c.LogLevel)
		fmt.Printf("Log File: %s\n", c.LogFile)

		fmt.Println("\nServer:")
		fmt.Printf("  Listen Address: %s\n", c.Server.ListenAddress)
		fmt.Printf("  Base Directory: %s\n", c.Server.BaseDir)
		fmt.Printf("  Marker File: %s\n", c.Server.MarkerFile)
		fmt.Printf("  Buffer Size: %d\n", c.Server.BufferSize)
		if c.Server.MaxConnections > 0 {
			fmt.Printf("  Max Connections: %d\n", c.Server.MaxConnections)
		} else {
			fmt.Println("  Max Connections: unlimited")
		}
		fmt.Printf("  Read Header Timeout: %s\n", c.Server.ReadHeaderTimeout)

		fmt.Println("\nProbe:")
		fmt.Printf("  Target: %s\n", c.Probe.Target)
		fmt.Printf("  Read Timeout: %s\n", c.Probe.Timeout)
		fmt.Printf("  Dial Timeout: %s\n", c.Probe.DialTimeout)
		fmt.Printf("  Max Response Bytes: %d\n", c.Probe.MaxResponseBytes)

		fmt.Println("\nReport Feed:")
		if c.Feed.Address != "" {
			fmt.Printf("  Address: %s\n", c.Feed.Address)
		} else {
			fmt.Println("  Address: disabled")
		}
		fmt.Printf("  Write Timeout: %s\n", c.Feed.WriteTimeout)
	},
}

// configSetCmd is the command to set configuration
var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set configuration",
	Long: `Set framecheck configuration.
Keys:
  ` + strings.Join(service.ConfigKeys, "\n  ") + `
Examples:
  framecheck config set server.base_dir /srv/webroot
  framecheck config set probe.timeout 750ms
  framecheck config set log_level debug`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		if err := Container.ConfigService.Set(Container.Config, key, value); err != nil {
			return err
		}

		if err := Container.ConfigService.SaveConfig(Container.Config, ConfigPath); err != nil {
			return err
		}

		fmt.Printf("Configuration %s successfully changed to %s\n", key, value)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
