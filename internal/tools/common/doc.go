// Package common provides shared helpers for MCP tool handlers, most
// notably the instrumented wrapper that adds metrics and audit logging
// around every registered tool.
package common
