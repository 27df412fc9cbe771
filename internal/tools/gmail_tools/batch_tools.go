package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailbox/internal/server"
	"github.com/teemow/gmailbox/internal/tools/batch"
	"github.com/teemow/gmailbox/internal/tools/common"
)

// RegisterBatchTools registers the bulk tools. All of them mutate the
// mailbox, so none is available in read-only mode.
func RegisterBatchTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc.ReadOnly() {
		return nil
	}

	batchModifyTool := mcp.NewTool("batch_modify_emails",
		mcp.WithDescription("Add or remove labels on many messages at once. Failures are reported per message"),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs"),
		),
		mcp.WithString("addLabelIds",
			mcp.Description("Label ID (string) or array of label IDs to add"),
		),
		mcp.WithString("removeLabelIds",
			mcp.Description("Label ID (string) or array of label IDs to remove"),
		),
		mcp.WithNumber("batchSize",
			mcp.Description("How many messages to process concurrently per chunk (default: 50)"),
		),
	)

	s.AddTool(batchModifyTool, common.InstrumentedToolHandler("batch_modify_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchModifyEmails(ctx, request, sc)
		}))

	batchDeleteTool := mcp.NewTool("batch_delete_emails",
		mcp.WithDescription("Permanently delete many messages at once, bypassing the trash. Failures are reported per message"),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs"),
		),
		mcp.WithNumber("batchSize",
			mcp.Description("How many messages to process concurrently per chunk (default: 50)"),
		),
	)

	s.AddTool(batchDeleteTool, common.InstrumentedToolHandler("batch_delete_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchDeleteEmails(ctx, request, sc)
		}))

	batchTrashTool := mcp.NewTool("batch_trash_emails",
		mcp.WithDescription("Move many messages to the trash at once. Failures are reported per message"),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs"),
		),
		mcp.WithNumber("batchSize",
			mcp.Description("How many messages to process concurrently per chunk (default: 50)"),
		),
	)

	s.AddTool(batchTrashTool, common.InstrumentedToolHandler("batch_trash_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchTrashEmails(ctx, request, sc)
		}))

	return nil
}

func recordBatch(ctx context.Context, sc *server.ServerContext, operation string, results []batch.Result) {
	var succeeded, failed int64
	for _, r := range results {
		if r.Status == "success" {
			succeeded++
		} else {
			failed++
		}
	}
	sc.Metrics().RecordBatchItems(ctx, operation, succeeded, failed)
}

func handleBatchModifyEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
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

	chunkSize := int(optionalIntArg(args, "batchSize", batch.DefaultChunkSize))

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	results := batch.Run(ctx, messageIDs, chunkSize, func(ctx context.Context, id string) (string, error) {
		if err := client.ModifyMessage(id, addLabels, removeLabels); err != nil {
			return "", err
		}
		return fmt.Sprintf("Message %s labels updated", id), nil
	})
	recordBatch(ctx, sc, "modify", results)

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleBatchDeleteEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chunkSize := int(optionalIntArg(args, "batchSize", batch.DefaultChunkSize))

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	results := batch.Run(ctx, messageIDs, chunkSize, func(ctx context.Context, id string) (string, error) {
		if err := client.DeleteMessage(id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Message %s deleted permanently", id), nil
	})
	recordBatch(ctx, sc, "delete", results)

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleBatchTrashEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chunkSize := int(optionalIntArg(args, "batchSize", batch.DefaultChunkSize))

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	results := batch.Run(ctx, messageIDs, chunkSize, func(ctx context.Context, id string) (string, error) {
		if err := client.TrashMessage(id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Message %s moved to trash", id), nil
	})
	recordBatch(ctx, sc, "trash", results)

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
