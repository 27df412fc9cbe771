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

// RegisterThreadTools registers the thread tools. Both are read-only.
func RegisterThreadTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getThreadTool := mcp.NewTool("get_thread",
		mcp.WithDescription("Get a conversation thread with all its messages"),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the thread to fetch"),
		),
	)

	s.AddTool(getThreadTool, common.InstrumentedToolHandler("get_thread", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetThread(ctx, request, sc)
		}))

	listThreadsTool := mcp.NewTool("list_threads",
		mcp.WithDescription("List conversation threads matching a Gmail search query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'in:inbox', 'from:user@example.com')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of threads to return (default: 10)"),
		),
	)

	s.AddTool(listThreadsTool, common.InstrumentedToolHandler("list_threads", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListThreads(ctx, request, sc)
		}))

	return nil
}

func handleGetThread(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	threadID, errResult := stringArg(request.GetArguments(), "threadId")
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := gmailClient(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	thread, err := client.GetThread(threadID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get thread: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Thread %s with %d messages:\n", thread.Id, len(thread.Messages))
	for i, msg := range thread.Messages {
		fmt.Fprintf(&b, "\n%d. ID: %s | %s\n", i+1, msg.Id, gmail.Summarize(msg))
		if msg.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", msg.Snippet)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleListThreads(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	threads, total, err := client.ListThreads(query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list threads: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found about %d threads, showing %d:\n", total, len(threads))
	for i, thread := range threads {
		fmt.Fprintf(&b, "%d. Thread ID: %s (Snippet: %s)\n", i+1, thread.Id, thread.Snippet)
	}

	return mcp.NewToolResultText(b.String()), nil
}
