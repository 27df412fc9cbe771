package gmail_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailbox/internal/gmail"
	"github.com/teemow/gmailbox/internal/google"
	"github.com/teemow/gmailbox/internal/server"
)

// RegisterGmailTools registers all Gmail-related tools with the MCP server.
// Tools that mutate the mailbox are skipped when the server context is
// read-only.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterEmailTools(s, sc); err != nil {
		return fmt.Errorf("failed to register email tools: %w", err)
	}

	if err := RegisterLabelTools(s, sc); err != nil {
		return fmt.Errorf("failed to register label tools: %w", err)
	}

	if err := RegisterThreadTools(s, sc); err != nil {
		return fmt.Errorf("failed to register thread tools: %w", err)
	}

	if err := RegisterAttachmentTools(s, sc); err != nil {
		return fmt.Errorf("failed to register attachment tools: %w", err)
	}

	if err := RegisterDraftTools(s, sc); err != nil {
		return fmt.Errorf("failed to register draft tools: %w", err)
	}

	if err := RegisterBatchTools(s, sc); err != nil {
		return fmt.Errorf("failed to register batch tools: %w", err)
	}

	return nil
}

// gmailClient resolves the Gmail client through the credential manager.
// The first call without stored credentials suspends on the interactive
// authorization flow; the returned tool result is non-nil when the caller
// should surface an error instead of proceeding.
func gmailClient(ctx context.Context, sc *server.ServerContext) (*gmail.Client, *mcp.CallToolResult) {
	client, err := sc.GmailClient(ctx)
	if err == nil {
		return client, nil
	}

	switch {
	case errors.Is(err, google.ErrAuthorizationInProgress):
		return nil, mcp.NewToolResultError(
			"Authorization is already in progress. Complete the flow in your browser, then retry.")
	case errors.Is(err, google.ErrAuthorizationTimeout):
		return nil, mcp.NewToolResultError(
			"Authorization timed out. Retry the operation to start a new authorization flow.")
	}

	var authErr *google.AuthorizationError
	if errors.As(err, &authErr) {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Authorization failed: %v", authErr))
	}

	return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to authenticate with Gmail: %v", err))
}

// stringArg extracts a required string argument.
func stringArg(args map[string]interface{}, name string) (string, *mcp.CallToolResult) {
	value, ok := args[name].(string)
	if !ok || value == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("%s is required", name))
	}
	return value, nil
}

// optionalStringArg extracts an optional string argument, returning
// fallback when absent or empty.
func optionalStringArg(args map[string]interface{}, name, fallback string) string {
	if value, ok := args[name].(string); ok && value != "" {
		return value
	}
	return fallback
}

// optionalIntArg extracts an optional numeric argument. JSON numbers
// arrive as float64.
func optionalIntArg(args map[string]interface{}, name string, fallback int64) int64 {
	if value, ok := args[name].(float64); ok && value > 0 {
		return int64(value)
	}
	return fallback
}

// stringSliceArg extracts an optional argument that is a string or an
// array of strings. Absence yields nil without error.
func stringSliceArg(args map[string]interface{}, name string) ([]string, error) {
	value, ok := args[name]
	if !ok || value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []interface{}:
		result := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok || str == "" {
				return nil, fmt.Errorf("%s[%d] must be a non-empty string", name, i)
			}
			result = append(result, str)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", name)
	}
}
