package gmail

import (
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBuilt(t *testing.T, raw string) *mail.Message {
	t.Helper()

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err, "raw payload must be base64url without padding")

	msg, err := mail.ReadMessage(strings.NewReader(string(decoded)))
	require.NoError(t, err)
	return msg
}

func TestBuildRawMessagePlain(t *testing.T) {
	raw, err := BuildRawMessage(&OutboundMessage{
		To:       []string{"alice@example.com", "bob@example.com"},
		Subject:  "Weekly sync",
		TextBody: "See you at 10.",
		Mode:     ContentModePlain,
	})
	require.NoError(t, err)
	assert.NotContains(t, raw, "=", "padding must be stripped")

	msg := decodeBuilt(t, raw)
	assert.Equal(t, "alice@example.com, bob@example.com", msg.Header.Get("To"))
	assert.Equal(t, "Weekly sync", msg.Header.Get("Subject"))
	assert.Equal(t, "text/plain; charset=utf-8", msg.Header.Get("Content-Type"))
	assert.Equal(t, "1.0", msg.Header.Get("MIME-Version"))
	assert.Empty(t, msg.Header.Get("Cc"))
	assert.Empty(t, msg.Header.Get("In-Reply-To"))

	body, err := io.ReadAll(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "See you at 10.", string(body))
}

func TestBuildRawMessageHeaderOrder(t *testing.T) {
	raw, err := BuildRawMessage(&OutboundMessage{
		To:        []string{"alice@example.com"},
		Cc:        []string{"carol@example.com"},
		Bcc:       []string{"dave@example.com"},
		Subject:   "Re: plans",
		TextBody:  "ack",
		InReplyTo: "<msgid-123@example.com>",
		ThreadID:  "thread-42",
	})
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)

	lines := strings.Split(string(decoded), "\r\n")
	require.GreaterOrEqual(t, len(lines), 7)
	assert.True(t, strings.HasPrefix(lines[0], "To: "))
	assert.True(t, strings.HasPrefix(lines[1], "Subject: "))
	assert.True(t, strings.HasPrefix(lines[2], "Cc: "))
	assert.True(t, strings.HasPrefix(lines[3], "Bcc: "))
	assert.True(t, strings.HasPrefix(lines[4], "In-Reply-To: "))
	assert.Equal(t, "References: thread-42", lines[5])
	assert.True(t, strings.HasPrefix(lines[6], "Content-Type: "))
}

func TestBuildRawMessageRequiresRecipient(t *testing.T) {
	_, err := BuildRawMessage(&OutboundMessage{
		Subject:  "orphan",
		TextBody: "nobody to send to",
	})
	assert.Error(t, err)
}

func TestBuildRawMessageEncodesSubject(t *testing.T) {
	raw, err := BuildRawMessage(&OutboundMessage{
		To:       []string{"alice@example.com"},
		Subject:  "Grüße aus Köln",
		TextBody: "hallo",
	})
	require.NoError(t, err)

	msg := decodeBuilt(t, raw)
	encoded := msg.Header.Get("Subject")
	assert.True(t, strings.HasPrefix(encoded, "=?UTF-8?"), "non-ASCII subject must be RFC 2047 encoded, got %q", encoded)

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(encoded)
	require.NoError(t, err)
	assert.Equal(t, "Grüße aus Köln", subject)
}

func TestBuildRawMessageAlternative(t *testing.T) {
	raw, err := BuildRawMessage(&OutboundMessage{
		To:       []string{"alice@example.com"},
		Subject:  "Rich",
		TextBody: "plain body",
		HTMLBody: "<p>rich body</p>",
		Mode:     ContentModeAlternative,
	})
	require.NoError(t, err)

	msg := decodeBuilt(t, raw)
	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)
	require.NotEmpty(t, params["boundary"])

	mr := multipart.NewReader(msg.Body, params["boundary"])

	first, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", first.Header.Get("Content-Type"))
	firstBody, err := io.ReadAll(first)
	require.NoError(t, err)
	assert.Equal(t, "plain body", string(firstBody))

	second, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", second.Header.Get("Content-Type"))
	secondBody, err := io.ReadAll(second)
	require.NoError(t, err)
	assert.Equal(t, "<p>rich body</p>", string(secondBody))

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err, "exactly two subparts expected")
}

func TestBuildRawMessageAlternativeDegradesWithoutHTML(t *testing.T) {
	raw, err := BuildRawMessage(&OutboundMessage{
		To:       []string{"alice@example.com"},
		Subject:  "Downgrade",
		TextBody: "just text",
		Mode:     ContentModeAlternative,
	})
	require.NoError(t, err)

	msg := decodeBuilt(t, raw)
	assert.Equal(t, "text/plain; charset=utf-8", msg.Header.Get("Content-Type"))

	body, err := io.ReadAll(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "just text", string(body))
}

func TestBuildRawMessageHTMLModeFallsBackToText(t *testing.T) {
	raw, err := BuildRawMessage(&OutboundMessage{
		To:       []string{"alice@example.com"},
		Subject:  "HTML wanted",
		TextBody: "only text available",
		Mode:     ContentModeHTML,
	})
	require.NoError(t, err)

	msg := decodeBuilt(t, raw)
	assert.Equal(t, "text/html; charset=utf-8", msg.Header.Get("Content-Type"))

	body, err := io.ReadAll(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "only text available", string(body))
}

func TestDecodeRawPayload(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    string
		wantErr bool
	}{
		{
			name:    "base64url without padding",
			encoded: base64.RawURLEncoding.EncodeToString([]byte("hello?>")),
			want:    "hello?>",
		},
		{
			name:    "base64url with padding",
			encoded: base64.URLEncoding.EncodeToString([]byte("hello?>")),
			want:    "hello?>",
		},
		{
			name:    "standard base64",
			encoded: base64.StdEncoding.EncodeToString([]byte("hello?>")),
			want:    "hello?>",
		},
		{
			name:    "garbage",
			encoded: "!!not base64!!",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRawPayload(tt.encoded)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
