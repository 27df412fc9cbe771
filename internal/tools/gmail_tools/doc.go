// Package gmail_tools registers the Gmail MCP tools and their handlers.
//
// The handlers are thin glue: argument parsing up front, then a call into
// the internal/gmail client, then a human-readable result. Tools that
// mutate the mailbox are not registered when the server runs read-only.
// Bulk tools run through the batch engine and report partial outcomes.
package gmail_tools
