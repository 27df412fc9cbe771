package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailbox/internal/server"
	"github.com/teemow/gmailbox/internal/tools/common"
)

// RegisterLabelTools registers the label management tools.
func RegisterLabelTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listLabelsTool := mcp.NewTool("list_email_labels",
		mcp.WithDescription("List all labels in the mailbox, system and user-created"),
	)

	s.AddTool(listLabelsTool, common.InstrumentedToolHandler("list_email_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	if sc.ReadOnly() {
		return nil
	}

	createLabelTool := mcp.NewTool("create_label",
		mcp.WithDescription("Create a new user label"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the label to create"),
		),
	)

	s.AddTool(createLabelTool, common.InstrumentedToolHandler("create_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateLabel(ctx, request, sc)
		}))

	deleteLabelTool := mcp.NewTool("delete_label",
		mcp.WithDescription("Delete a user label. Messages keep their other labels"),
		mcp.WithString("labelId",
			mcp.Required(),
			mcp.Description("The ID of the label to delete"),
		),
	)

	s.AddTool(deleteLabelTool, common.InstrumentedToolHandler("delete_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteLabel(ctx, request, sc)
		}))

	return nil
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	labels, err := client.ListLabels()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}

	var system, user []string
	for _, label := range labels {
		line := fmt.Sprintf("- %s (ID: %s)", label.Name, label.Id)
		if label.Type == "system" {
			system = append(system, line)
		} else {
			user = append(user, line)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d labels.\n", len(labels))
	if len(system) > 0 {
		fmt.Fprintf(&b, "\nSystem labels (%d):\n%s\n", len(system), strings.Join(system, "\n"))
	}
	if len(user) > 0 {
		fmt.Fprintf(&b, "\nUser labels (%d):\n%s\n", len(user), strings.Join(user, "\n"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	name, errResult := stringArg(request.GetArguments(), "name")
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	label, err := client.CreateLabel(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create label: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Label %q created with ID %s", label.Name, label.Id)), nil
}

func handleDeleteLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	labelID, errResult := stringArg(request.GetArguments(), "labelId")
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.DeleteLabel(labelID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete label: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Label %s deleted", labelID)), nil
}
