package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gmailbox/internal/instrumentation"
	"github.com/teemow/gmailbox/internal/logging"
	"github.com/teemow/gmailbox/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with metrics and an audit
// log line. A handler error and a tool-level error result both count as
// failures.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}

		sc.Metrics().RecordToolInvocation(ctx, toolName, status, duration)

		logger := logging.WithTool(sc.Logger(), toolName)
		if status == instrumentation.StatusError {
			logger.Warn("tool invocation failed",
				logging.Status(status),
				logging.Err(err),
				logging.KeyDuration, duration,
			)
		} else {
			logger.Debug("tool invocation",
				logging.Status(status),
				logging.KeyDuration, duration,
			)
		}

		return result, err
	}
}
