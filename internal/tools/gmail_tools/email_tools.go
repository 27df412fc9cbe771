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

// RegisterEmailTools registers the single-message tools. Mutating tools
// are only available when the server is not read-only.
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	readEmailTool := mcp.NewTool("read_email",
		mcp.WithDescription("Read a specific email by its message ID, including body text and attachment list"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to read"),
		),
	)

	s.AddTool(readEmailTool, common.InstrumentedToolHandler("read_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadEmail(ctx, request, sc)
		}))

	searchEmailsTool := mcp.NewTool("search_emails",
		mcp.WithDescription("Search emails using Gmail query syntax (e.g., 'from:user@example.com is:unread')"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results to return with details (default: 10)"),
		),
	)

	s.AddTool(searchEmailsTool, common.InstrumentedToolHandler("search_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	if sc.ReadOnly() {
		return nil
	}

	sendEmailTool := mcp.NewTool("send_email",
		mcp.WithDescription("Send an email. Supports plain text, HTML, and multipart/alternative bodies, plus reply threading"),
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
			mcp.Description("Thread ID to keep the reply in its conversation"),
		),
	)

	s.AddTool(sendEmailTool, common.InstrumentedToolHandler("send_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc)
		}))

	modifyEmailTool := mcp.NewTool("modify_email",
		mcp.WithDescription("Add or remove labels on a message (e.g., remove INBOX to archive, add UNREAD)"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to modify"),
		),
		mcp.WithString("addLabelIds",
			mcp.Description("Label ID (string) or array of label IDs to add"),
		),
		mcp.WithString("removeLabelIds",
			mcp.Description("Label ID (string) or array of label IDs to remove"),
		),
	)

	s.AddTool(modifyEmailTool, common.InstrumentedToolHandler("modify_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleModifyEmail(ctx, request, sc)
		}))

	deleteEmailTool := mcp.NewTool("delete_email",
		mcp.WithDescription("Permanently delete a message, bypassing the trash"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to delete"),
		),
	)

	s.AddTool(deleteEmailTool, common.InstrumentedToolHandler("delete_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEmail(ctx, request, sc)
		}))

	trashEmailTool := mcp.NewTool("trash_email",
		mcp.WithDescription("Move a message to the trash"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to trash"),
		),
	)

	s.AddTool(trashEmailTool, common.InstrumentedToolHandler("trash_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleTrashEmail(ctx, request, sc)
		}))

	untrashEmailTool := mcp.NewTool("untrash_email",
		mcp.WithDescription("Restore a message from the trash"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to restore"),
		),
	)

	s.AddTool(untrashEmailTool, common.InstrumentedToolHandler("untrash_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUntrashEmail(ctx, request, sc)
		}))

	return nil
}

// outboundFromArgs builds the message for send_email and draft_email,
// which share their argument shape.
func outboundFromArgs(args map[string]interface{}) (*gmail.OutboundMessage, *mcp.CallToolResult) {
	to, err := stringSliceArg(args, "to")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	if len(to) == 0 {
		return nil, mcp.NewToolResultError("to is required")
	}

	subject, errResult := stringArg(args, "subject")
	if errResult != nil {
		return nil, errResult
	}

	cc, err := stringSliceArg(args, "cc")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	bcc, err := stringSliceArg(args, "bcc")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	textBody := optionalStringArg(args, "body", "")
	htmlBody := optionalStringArg(args, "htmlBody", "")
	if textBody == "" && htmlBody == "" {
		return nil, mcp.NewToolResultError("body or htmlBody is required")
	}

	mode := gmail.ContentMode(optionalStringArg(args, "mimeType", ""))
	switch mode {
	case gmail.ContentModePlain, gmail.ContentModeHTML, gmail.ContentModeAlternative:
	case "":
		switch {
		case textBody != "" && htmlBody != "":
			mode = gmail.ContentModeAlternative
		case htmlBody != "":
			mode = gmail.ContentModeHTML
		default:
			mode = gmail.ContentModePlain
		}
	default:
		return nil, mcp.NewToolResultError("mimeType must be 'plain', 'html', or 'alternative'")
	}

	return &gmail.OutboundMessage{
		To:        to,
		Cc:        cc,
		Bcc:       bcc,
		Subject:   subject,
		TextBody:  textBody,
		HTMLBody:  htmlBody,
		Mode:      mode,
		InReplyTo: optionalStringArg(args, "inReplyTo", ""),
		ThreadID:  optionalStringArg(args, "threadId", ""),
	}, nil
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	msg, errResult := outboundFromArgs(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	id, threadID, err := client.SendMessage(msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send email: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Email sent successfully. Message ID: %s (thread %s)", id, threadID)), nil
}

func handleReadEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID, errResult := stringArg(request.GetArguments(), "messageId")
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	msg, err := client.GetMessage(messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read email: %v", err)), nil
	}

	content := gmail.ExtractContent(msg.Payload)
	body, fromHTML := content.Body()

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", gmail.HeaderValue(msg, "From"))
	fmt.Fprintf(&b, "To: %s\n", gmail.HeaderValue(msg, "To"))
	fmt.Fprintf(&b, "Subject: %s\n", gmail.HeaderValue(msg, "Subject"))
	fmt.Fprintf(&b, "Date: %s\n", gmail.HeaderValue(msg, "Date"))
	fmt.Fprintf(&b, "Thread ID: %s\n", msg.ThreadId)

	if fromHTML {
		b.WriteString("\n[no plain text body, showing HTML]\n")
	}
	b.WriteString("\n")
	b.WriteString(body)

	if len(content.Attachments) > 0 {
		fmt.Fprintf(&b, "\n\nAttachments (%d):\n", len(content.Attachments))
		for _, att := range content.Attachments {
			fmt.Fprintf(&b, "- %s (%s, %d bytes, ID: %s)\n", att.Filename, att.MimeType, att.Size, att.ID)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleSearchEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, errResult := stringArg(args, "query")
	if errResult != nil {
		return errResult, nil
	}
	maxResults := optionalIntArg(args, "maxResults", gmail.DefaultListCap)

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	msgs, total, err := client.SearchMessages(query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found about %d messages, showing %d:\n", total, len(msgs))

	for i, ref := range msgs {
		msg, err := client.GetMessage(ref.Id)
		if err != nil {
			fmt.Fprintf(&b, "%d. ID: %s (failed to load: %v)\n", i+1, ref.Id, err)
			continue
		}
		fmt.Fprintf(&b, "%d. ID: %s | %s\n", i+1, msg.Id, gmail.Summarize(msg))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleModifyEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID, errResult := stringArg(args, "messageId")
	if errResult != nil {
		return errResult, nil
	}

	addLabels, err := stringSliceArg(args, "addLabelIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	removeLabels, err := stringSliceArg(args, "removeLabelIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(addLabels) == 0 && len(removeLabels) == 0 {
		return mcp.NewToolResultError("addLabelIds or removeLabelIds is required"), nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.ModifyMessage(messageID, addLabels, removeLabels); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to modify email: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message %s labels updated successfully", messageID)), nil
}

func handleDeleteEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID, errResult := stringArg(request.GetArguments(), "messageId")
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.DeleteMessage(messageID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete email: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message %s deleted permanently", messageID)), nil
}

func handleTrashEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID, errResult := stringArg(request.GetArguments(), "messageId")
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.TrashMessage(messageID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to trash email: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message %s moved to trash", messageID)), nil
}

func handleUntrashEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID, errResult := stringArg(request.GetArguments(), "messageId")
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.UntrashMessage(messageID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to restore email: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message %s restored from trash", messageID)), nil
}
