package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailbox/internal/gmail"
	"github.com/teemow/gmailbox/internal/server"
	"github.com/teemow/gmailbox/internal/tools/common"
)

// RegisterDraftTools registers the draft tools. Listing stays available
// in read-only mode; creating, sending, and deleting do not.
func RegisterDraftTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listDraftsTool := mcp.NewTool("list_drafts",
		mcp.WithDescription("List drafts in the mailbox"),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of drafts to return (default: 10)"),
		),
	)

	s.AddTool(listDraftsTool, common.InstrumentedToolHandler("list_drafts", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListDrafts(ctx, request, sc)
		}))

	if sc.ReadOnly() {
		return nil
	}

	draftEmailTool := mcp.NewTool("draft_email",
		mcp.WithDescription("Create a draft email without sending it. Same arguments as send_email"),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient address (string) or array of addresses"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Description("Plain text body"),
		),
		mcp.WithString("htmlBody",
			mcp.Description("HTML body"),
		),
		mcp.WithString("mimeType",
			mcp.Description("Body layout: 'plain', 'html', or 'alternative' (default inferred from provided bodies)"),
		),
		mcp.WithString("cc",
			mcp.Description("Cc address (string) or array of addresses"),
		),
		mcp.WithString("bcc",
			mcp.Description("Bcc address (string) or array of addresses"),
		),
		mcp.WithString("inReplyTo",
			mcp.Description("Message-ID header of the message being replied to"),
		),
		mcp.WithString("threadId",
			mcp.Description("Thread ID to keep the draft in its conversation"),
		),
	)

	s.AddTool(draftEmailTool, common.InstrumentedToolHandler("draft_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDraftEmail(ctx, request, sc)
		}))

	sendDraftTool := mcp.NewTool("send_draft",
		mcp.WithDescription("Send an existing draft"),
		mcp.WithString("draftId",
			mcp.Required(),
			mcp.Description("The ID of the draft to send"),
		),
	)

	s.AddTool(sendDraftTool, common.InstrumentedToolHandler("send_draft", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendDraft(ctx, request, sc)
		}))

	deleteDraftTool := mcp.NewTool("delete_draft",
		mcp.WithDescription("Discard a draft"),
		mcp.WithString("draftId",
			mcp.Required(),
			mcp.Description("The ID of the draft to delete"),
		),
	)

	s.AddTool(deleteDraftTool, common.InstrumentedToolHandler("delete_draft", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteDraft(ctx, request, sc)
		}))

	return nil
}

func handleDraftEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	msg, errResult := outboundFromArgs(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	draftID, err := client.CreateDraft(msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft created successfully. Draft ID: %s", draftID)), nil
}

func handleListDrafts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	maxResults := optionalIntArg(request.GetArguments(), "maxResults", gmail.DefaultListCap)

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	drafts, err := client.ListDrafts(maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list drafts: %v", err)), nil
	}

	if len(drafts) == 0 {
		return mcp.NewToolResultText("No drafts found"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d drafts:\n", len(drafts))
	for i, draft := range drafts {
		line := fmt.Sprintf("%d. Draft ID: %s", i+1, draft.Id)
		if draft.Message != nil {
			line += fmt.Sprintf(" | %s", gmail.Summarize(draft.Message))
		}
		b.WriteString(line + "\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleSendDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	draftID, errResult := stringArg(request.GetArguments(), "draftId")
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	messageID, err := client.SendDraft(draftID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft %s sent successfully. Message ID: %s", draftID, messageID)), nil
}

func handleDeleteDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	draftID, errResult := stringArg(request.GetArguments(), "draftId")
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.DeleteDraft(draftID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft %s deleted", draftID)), nil
}
