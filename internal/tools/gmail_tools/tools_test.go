package gmail_tools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gmailbox/internal/gmail"
	"github.com/teemow/gmailbox/internal/google"
	"github.com/teemow/gmailbox/internal/logging"
	"github.com/teemow/gmailbox/internal/server"
)

func newTestServerContext(t *testing.T, readOnly bool) *server.ServerContext {
	t.Helper()

	manager := google.NewManager(
		google.NewOAuthConfig("client-id", "client-secret"),
		google.NewTokenStore(filepath.Join(t.TempDir(), "credentials.json")),
		logging.NewStderrLogger(false),
	)

	sc, err := server.NewServerContext(context.Background(), server.Config{
		Manager:  manager,
		ReadOnly: readOnly,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callWithArgs(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestRegisterGmailTools(t *testing.T) {
	s := mcpserver.NewMCPServer("gmailbox-test", "0.0.0")
	require.NoError(t, RegisterGmailTools(s, newTestServerContext(t, false)))
}

func TestRegisterGmailToolsReadOnly(t *testing.T) {
	s := mcpserver.NewMCPServer("gmailbox-test", "0.0.0")
	require.NoError(t, RegisterGmailTools(s, newTestServerContext(t, true)))
}

func TestHandlersRejectMissingArguments(t *testing.T) {
	sc := newTestServerContext(t, false)
	ctx := context.Background()

	handlers := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error)
	}{
		{"read_email", handleReadEmail},
		{"search_emails", handleSearchEmails},
		{"send_email", handleSendEmail},
		{"modify_email", handleModifyEmail},
		{"delete_email", handleDeleteEmail},
		{"trash_email", handleTrashEmail},
		{"untrash_email", handleUntrashEmail},
		{"create_label", handleCreateLabel},
		{"delete_label", handleDeleteLabel},
		{"get_thread", handleGetThread},
		{"list_threads", handleListThreads},
		{"list_attachments", handleListAttachments},
		{"download_attachment", handleDownloadAttachment},
		{"draft_email", handleDraftEmail},
		{"send_draft", handleSendDraft},
		{"delete_draft", handleDeleteDraft},
		{"batch_modify_emails", handleBatchModifyEmails},
		{"batch_delete_emails", handleBatchDeleteEmails},
		{"batch_trash_emails", handleBatchTrashEmails},
	}

	for _, tt := range handlers {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler(ctx, callWithArgs(map[string]interface{}{}), sc)
			require.NoError(t, err, "argument errors are tool results, not handler errors")
			require.NotNil(t, result)
			assert.True(t, result.IsError, "missing arguments must yield a tool error")
		})
	}
}

func TestModifyEmailRequiresLabelChange(t *testing.T) {
	sc := newTestServerContext(t, false)

	result, err := handleModifyEmail(context.Background(), callWithArgs(map[string]interface{}{
		"messageId": "msg-1",
	}), sc)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestOutboundFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		wantMode gmail.ContentMode
		wantErr  bool
	}{
		{
			name: "plain text only",
			args: map[string]interface{}{
				"to":      "alice@example.com",
				"subject": "hi",
				"body":    "text",
			},
			wantMode: gmail.ContentModePlain,
		},
		{
			name: "html only",
			args: map[string]interface{}{
				"to":       "alice@example.com",
				"subject":  "hi",
				"htmlBody": "<p>hi</p>",
			},
			wantMode: gmail.ContentModeHTML,
		},
		{
			name: "both bodies default to alternative",
			args: map[string]interface{}{
				"to":       "alice@example.com",
				"subject":  "hi",
				"body":     "text",
				"htmlBody": "<p>hi</p>",
			},
			wantMode: gmail.ContentModeAlternative,
		},
		{
			name: "explicit mode wins",
			args: map[string]interface{}{
				"to":       "alice@example.com",
				"subject":  "hi",
				"body":     "text",
				"htmlBody": "<p>hi</p>",
				"mimeType": "html",
			},
			wantMode: gmail.ContentModeHTML,
		},
		{
			name: "recipient array",
			args: map[string]interface{}{
				"to":      []interface{}{"alice@example.com", "bob@example.com"},
				"subject": "hi",
				"body":    "text",
			},
			wantMode: gmail.ContentModePlain,
		},
		{
			name: "missing recipient",
			args: map[string]interface{}{
				"subject": "hi",
				"body":    "text",
			},
			wantErr: true,
		},
		{
			name: "missing subject",
			args: map[string]interface{}{
				"to":   "alice@example.com",
				"body": "text",
			},
			wantErr: true,
		},
		{
			name: "missing body",
			args: map[string]interface{}{
				"to":      "alice@example.com",
				"subject": "hi",
			},
			wantErr: true,
		},
		{
			name: "invalid mode",
			args: map[string]interface{}{
				"to":       "alice@example.com",
				"subject":  "hi",
				"body":     "text",
				"mimeType": "richtext",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, errResult := outboundFromArgs(tt.args)
			if tt.wantErr {
				require.NotNil(t, errResult)
				assert.True(t, errResult.IsError)
				return
			}
			require.Nil(t, errResult)
			assert.Equal(t, tt.wantMode, msg.Mode)
		})
	}
}

func TestOutboundFromArgsThreading(t *testing.T) {
	msg, errResult := outboundFromArgs(map[string]interface{}{
		"to":        "alice@example.com",
		"subject":   "Re: plans",
		"body":      "ack",
		"inReplyTo": "<msgid@example.com>",
		"threadId":  "thread-42",
	})
	require.Nil(t, errResult)
	assert.Equal(t, "<msgid@example.com>", msg.InReplyTo)
	assert.Equal(t, "thread-42", msg.ThreadID)
}

func TestStringSliceArg(t *testing.T) {
	args := map[string]interface{}{
		"single": "a",
		"array":  []interface{}{"a", "b"},
		"empty":  "",
		"mixed":  []interface{}{"a", 1},
		"number": 5,
	}

	got, err := stringSliceArg(args, "single")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	got, err = stringSliceArg(args, "array")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = stringSliceArg(args, "absent")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = stringSliceArg(args, "empty")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = stringSliceArg(args, "mixed")
	assert.Error(t, err)

	_, err = stringSliceArg(args, "number")
	assert.Error(t, err)
}

func TestOptionalIntArg(t *testing.T) {
	args := map[string]interface{}{
		"valid":    float64(25),
		"zero":     float64(0),
		"negative": float64(-3),
		"string":   "10",
	}

	assert.Equal(t, int64(25), optionalIntArg(args, "valid", 10))
	assert.Equal(t, int64(10), optionalIntArg(args, "zero", 10))
	assert.Equal(t, int64(10), optionalIntArg(args, "negative", 10))
	assert.Equal(t, int64(10), optionalIntArg(args, "string", 10))
	assert.Equal(t, int64(10), optionalIntArg(args, "absent", 10))
}
