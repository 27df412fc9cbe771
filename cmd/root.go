package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gmailbox application
var rootCmd = &cobra.Command{
	Use:   "gmailbox",
	Short: "Gmail MCP server with autonomous OAuth credential management",
	Long: `gmailbox exposes a Gmail mailbox to AI assistants as an MCP
(Model Context Protocol) server.

Credentials are managed autonomously: the first operation without a usable
stored token opens a browser for the OAuth consent flow, captures the
callback on a local listener, and persists the refresh token for all later
runs. Sending, drafting, labels, threads, attachments, and bulk operations
are exposed as tools; write operations stay disabled unless --yolo is set.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gmailbox version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
