// Package cmd implements the kobo-mcp CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bbdaniels/kobo-mcp/config"
)

var (
	cfgFile       string
	envFile       string
	verbose       bool
	serverURL     string
	themeOverride string

	appVersion = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "kobo-mcp",
	Short: "kobo-mcp - KoboToolbox tools for MCP clients",
	Long: "kobo-mcp exposes a KoboToolbox account to MCP clients: list and read forms, " +
		"page through submissions, deploy or replace XLSForms and run data exports.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to .env file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every HTTP request at debug level")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "KoboToolbox server URL, or eu / global")
	rootCmd.PersistentFlags().StringVar(&themeOverride, "theme", "", "TUI color theme: dark, light, or auto")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(initCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	appVersion = version
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("kobo-mcp %s (commit: %s)\n", version, commit))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
