// Package batch provides common utilities for bulk mailbox operations.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Formatting batch results in a consistent structure
//   - Running per-item operations in bounded concurrent chunks
//   - Handling partial failures without aborting the batch
package batch
