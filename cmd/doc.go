// Package cmd implements the command-line interface for gmailbox.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing Gmail tools to AI assistants
//   - auth: Run the OAuth consent flow up front and store the credential
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
