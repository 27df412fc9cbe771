// Package gmail wraps the Gmail API and the message codec.
//
// Client is a thin authenticated wrapper over the vendor service, keyed by
// opaque message/draft/label/thread identifiers. The codec lives beside it:
// BuildRawMessage turns an OutboundMessage into the base64url payload the
// API transmits, and ExtractContent walks an inbound MIME part tree into
// plain text, HTML and attachment descriptors.
package gmail
