package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func inlinePart(mimeType, body string) *gmail.MessagePart {
	return &gmail.MessagePart{
		MimeType: mimeType,
		Body: &gmail.MessagePartBody{
			Data: base64.RawURLEncoding.EncodeToString([]byte(body)),
		},
	}
}

func TestExtractContentNestedTree(t *testing.T) {
	// multipart/mixed
	//   multipart/alternative
	//     text/plain
	//     multipart/related
	//       text/html
	//       image (attachment, no filename)
	//   pdf (attachment)
	root := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					inlinePart("text/plain", "plain text"),
					{
						MimeType: "multipart/related",
						Parts: []*gmail.MessagePart{
							inlinePart("text/html", "<p>html text</p>"),
							{
								MimeType: "image/png",
								Body: &gmail.MessagePartBody{
									AttachmentId: "att-inline-logo-0123456789abcdef",
									Size:         512,
								},
							},
						},
					},
				},
			},
			{
				MimeType: "application/pdf",
				Filename: "report.pdf",
				Body: &gmail.MessagePartBody{
					AttachmentId: "att-report",
					Size:         2048,
				},
			},
		},
	}

	content := ExtractContent(root)

	assert.Equal(t, "plain text", content.Text)
	assert.Equal(t, "<p>html text</p>", content.HTML)

	require.Len(t, content.Attachments, 2, "each attachment reported exactly once")

	assert.Equal(t, "att-inline-logo-0123456789abcdef", content.Attachments[0].ID)
	assert.Equal(t, "attachment-att-inline-l", content.Attachments[0].Filename)
	assert.Equal(t, "image/png", content.Attachments[0].MimeType)
	assert.Equal(t, int64(512), content.Attachments[0].Size)

	assert.Equal(t, "att-report", content.Attachments[1].ID)
	assert.Equal(t, "report.pdf", content.Attachments[1].Filename)
	assert.Equal(t, "application/pdf", content.Attachments[1].MimeType)
}

func TestExtractContentConcatenatesInDocumentOrder(t *testing.T) {
	root := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			inlinePart("text/plain", "first. "),
			inlinePart("text/plain", "second."),
			inlinePart("text/html", "<p>one</p>"),
			inlinePart("text/html", "<p>two</p>"),
		},
	}

	content := ExtractContent(root)
	assert.Equal(t, "first. second.", content.Text)
	assert.Equal(t, "<p>one</p><p>two</p>", content.HTML)
}

func TestExtractContentDefaultsAttachmentMimeType(t *testing.T) {
	root := &gmail.MessagePart{
		Filename: "blob.bin",
		Body: &gmail.MessagePartBody{
			AttachmentId: "att-blob",
		},
	}

	content := ExtractContent(root)
	require.Len(t, content.Attachments, 1)
	assert.Equal(t, "application/octet-stream", content.Attachments[0].MimeType)
}

func TestExtractContentNilAndEmpty(t *testing.T) {
	assert.Zero(t, ExtractContent(nil))
	assert.Zero(t, ExtractContent(&gmail.MessagePart{MimeType: "multipart/mixed"}))
}

func TestContentBody(t *testing.T) {
	body, fromHTML := Content{Text: "text", HTML: "<p>html</p>"}.Body()
	assert.Equal(t, "text", body)
	assert.False(t, fromHTML)

	body, fromHTML = Content{HTML: "<p>html only</p>"}.Body()
	assert.Equal(t, "<p>html only</p>", body)
	assert.True(t, fromHTML)

	body, fromHTML = Content{}.Body()
	assert.Empty(t, body)
	assert.False(t, fromHTML)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "____etc_passwd"},
		{"dir/file.txt", "dir_file.txt"},
		{"dir\\file.txt", "dir_file.txt"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.input), "input %q", tt.input)
	}
}

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "alice@example.com"},
				{Name: "Subject", Value: "Hello"},
			},
		},
	}

	assert.Equal(t, "alice@example.com", HeaderValue(msg, "from"))
	assert.Equal(t, "Hello", HeaderValue(msg, "SUBJECT"))
	assert.Empty(t, HeaderValue(msg, "Date"))
	assert.Empty(t, HeaderValue(nil, "From"))
}

func TestSummarize(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "alice@example.com"},
				{Name: "Subject", Value: "Hello"},
				{Name: "Date", Value: "Sat, 30 Aug 2026 10:00:00 +0000"},
			},
		},
	}

	assert.Equal(t,
		"From: alice@example.com | Subject: Hello | Date: Sat, 30 Aug 2026 10:00:00 +0000",
		Summarize(msg))
}
