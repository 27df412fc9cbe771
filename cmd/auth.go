package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/gmailbox/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var (
		debugMode       bool
		clientID        string
		clientSecret    string
		credentialsFile string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Run the OAuth consent flow and store the credential",
		Long: `Run the interactive OAuth consent flow up front instead of waiting
for the first tool call. Opens a browser, captures the callback on a local
listener, and persists the refresh token so the server can start without
user interaction.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(debugMode, clientID, clientSecret, credentialsFile)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Google OAuth client ID. Can also use GMAIL_OAUTH_CLIENT_ID env var.")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "Google OAuth client secret. Can also use GMAIL_OAUTH_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&credentialsFile, "credentials-file", "", "Path of the stored credential file. Can also use GMAILBOX_CREDENTIALS env var.")

	return cmd
}

func runAuth(debugMode bool, clientID, clientSecret, credentialsFile string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.NewStderrLogger(debugMode)

	manager, err := buildManager(clientID, clientSecret, credentialsFile, logger)
	if err != nil {
		return err
	}

	if _, err := manager.Authorize(ctx); err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	fmt.Printf("Authorization successful. Credential stored at %s\n", manager.TokenPath())
	return nil
}
