package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/google/uuid"
)

// BuildRawMessage renders an outbound message to the transmittable payload:
// RFC 2822 headers and body, base64url-encoded without padding, as the
// Messages.Send raw field expects.
//
// Header order is fixed: To, Subject, then Cc, Bcc, In-Reply-To and
// References only when the corresponding field is set, then Content-Type.
func BuildRawMessage(msg *OutboundMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}

	var b strings.Builder

	writeHeader(&b, "To", strings.Join(msg.To, ", "))
	writeHeader(&b, "Subject", encodeRFC2047(msg.Subject))
	if len(msg.Cc) > 0 {
		writeHeader(&b, "Cc", strings.Join(msg.Cc, ", "))
	}
	if len(msg.Bcc) > 0 {
		writeHeader(&b, "Bcc", strings.Join(msg.Bcc, ", "))
	}
	if msg.InReplyTo != "" {
		writeHeader(&b, "In-Reply-To", msg.InReplyTo)
	}
	if msg.ThreadID != "" {
		writeHeader(&b, "References", msg.ThreadID)
	}

	switch {
	case msg.Mode == ContentModeAlternative && msg.HTMLBody != "":
		boundary := "boundary-" + uuid.NewString()
		writeHeader(&b, "Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", boundary))
		writeHeader(&b, "MIME-Version", "1.0")
		b.WriteString("\r\n")
		writeAlternativeBody(&b, boundary, msg.TextBody, msg.HTMLBody)

	case msg.Mode == ContentModeHTML || msg.HTMLBody != "":
		writeHeader(&b, "Content-Type", "text/html; charset=utf-8")
		writeHeader(&b, "MIME-Version", "1.0")
		b.WriteString("\r\n")
		body := msg.HTMLBody
		if body == "" {
			body = msg.TextBody
		}
		b.WriteString(body)

	default:
		// Plain mode, including alternative requested without an HTML
		// body: degrade rather than emit an empty alternative branch.
		writeHeader(&b, "Content-Type", "text/plain; charset=utf-8")
		writeHeader(&b, "MIME-Version", "1.0")
		b.WriteString("\r\n")
		b.WriteString(msg.TextBody)
	}

	return base64.RawURLEncoding.EncodeToString([]byte(b.String())), nil
}

func writeHeader(b *strings.Builder, name, value string) {
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

func writeAlternativeBody(b *strings.Builder, boundary, text, html string) {
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(text)
	b.WriteString("\r\n--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n--" + boundary + "--\r\n")
}

// encodeRFC2047 encodes a header value containing non-ASCII characters
// (subjects with umlauts, CJK, emoji) per RFC 2047. ASCII passes through.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// DecodeRawPayload reverses the base64url encoding of a raw payload or an
// inline part body. Gmail emits RFC 4648 base64url, but some producers pad,
// so standard encoding is tried as a fallback.
func DecodeRawPayload(data string) ([]byte, error) {
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode part body: %w", err)
	}
	return decoded, nil
}
