package gmail_tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailbox/internal/gmail"
	"github.com/teemow/gmailbox/internal/server"
	"github.com/teemow/gmailbox/internal/tools/common"
)

// RegisterAttachmentTools registers the attachment tools.
func RegisterAttachmentTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listAttachmentsTool := mcp.NewTool("list_attachments",
		mcp.WithDescription("List the attachments of a message with their IDs, filenames, MIME types, and sizes"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to inspect"),
		),
	)

	s.AddTool(listAttachmentsTool, common.InstrumentedToolHandler("list_attachments", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAttachments(ctx, request, sc)
		}))

	downloadAttachmentTool := mcp.NewTool("download_attachment",
		mcp.WithDescription("Download an attachment to a local file (maximum 25MB)"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message holding the attachment"),
		),
		mcp.WithString("attachmentId",
			mcp.Required(),
			mcp.Description("The ID of the attachment, as reported by list_attachments or read_email"),
		),
		mcp.WithString("filename",
			mcp.Description("Filename to save as (default: derived from the attachment ID)"),
		),
		mcp.WithString("savePath",
			mcp.Description("Directory to save into (default: current directory)"),
		),
	)

	s.AddTool(downloadAttachmentTool, common.InstrumentedToolHandler("download_attachment", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDownloadAttachment(ctx, request, sc)
		}))

	return nil
}

func handleListAttachments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID, errResult := stringArg(request.GetArguments(), "messageId")
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	attachments, err := client.ListAttachments(messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list attachments: %v", err)), nil
	}

	if len(attachments) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Message %s has no attachments", messageID)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Message %s has %d attachments:\n", messageID, len(attachments))
	for _, att := range attachments {
		fmt.Fprintf(&b, "- %s (%s, %d bytes, ID: %s)\n", att.Filename, att.MimeType, att.Size, att.ID)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleDownloadAttachment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID, errResult := stringArg(args, "messageId")
	if errResult != nil {
		return errResult, nil
	}
	attachmentID, errResult := stringArg(args, "attachmentId")
	if errResult != nil {
		return errResult, nil
	}

	filename := optionalStringArg(args, "filename", "")
	if filename == "" {
		id := attachmentID
		if len(id) > 12 {
			id = id[:12]
		}
		filename = "attachment-" + id
	}
	filename = gmail.SanitizeFilename(filename)

	savePath := optionalStringArg(args, "savePath", ".")

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	data, err := client.GetAttachment(messageID, attachmentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to download attachment: %v", err)), nil
	}

	target := filepath.Join(savePath, filename)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save attachment: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Attachment saved to %s (%d bytes)", target, len(data))), nil
}
