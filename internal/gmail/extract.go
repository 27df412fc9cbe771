package gmail

import (
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// ExtractContent walks an inbound MIME part tree and accumulates plain
// text, HTML, and attachment descriptors in document order.
//
// Leaf parts with inline text/plain or text/html data are concatenated
// into the respective field. Parts whose body lives behind an attachment
// reference become Attachment records; a missing filename is synthesized
// from the attachment id and a missing MIME type defaults to
// application/octet-stream. Container parts recurse into their children;
// the tree is cycle-free by construction of the source format.
func ExtractContent(root *gmail.MessagePart) Content {
	var c Content
	walk(root, &c)
	return c
}

func walk(part *gmail.MessagePart, c *Content) {
	if part == nil {
		return
	}

	if part.Body != nil && part.Body.AttachmentId != "" {
		c.Attachments = append(c.Attachments, Attachment{
			ID:       part.Body.AttachmentId,
			Filename: attachmentFilename(part),
			MimeType: attachmentMimeType(part),
			Size:     part.Body.Size,
		})
	} else if part.Body != nil && part.Body.Data != "" {
		switch part.MimeType {
		case "text/plain":
			if decoded, err := DecodeRawPayload(part.Body.Data); err == nil {
				c.Text += string(decoded)
			}
		case "text/html":
			if decoded, err := DecodeRawPayload(part.Body.Data); err == nil {
				c.HTML += string(decoded)
			}
		}
	}

	for _, child := range part.Parts {
		walk(child, c)
	}
}

func attachmentFilename(part *gmail.MessagePart) string {
	if part.Filename != "" {
		return SanitizeFilename(part.Filename)
	}
	id := part.Body.AttachmentId
	if len(id) > 12 {
		id = id[:12]
	}
	return "attachment-" + id
}

func attachmentMimeType(part *gmail.MessagePart) string {
	if part.MimeType != "" {
		return part.MimeType
	}
	return "application/octet-stream"
}

// SanitizeFilename strips path separators and traversal sequences from an
// attachment filename before it reaches any filesystem path.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")
	return filename
}

// HeaderValue returns the named header of a message, or "" when absent.
// Header name matching is case-insensitive.
func HeaderValue(msg *gmail.Message, name string) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Summarize renders a one-line description of a message from its metadata
// headers, for list/search output.
func Summarize(msg *gmail.Message) string {
	return fmt.Sprintf("From: %s | Subject: %s | Date: %s",
		HeaderValue(msg, "From"), HeaderValue(msg, "Subject"), HeaderValue(msg, "Date"))
}
