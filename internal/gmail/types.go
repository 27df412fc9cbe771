package gmail

// userID addresses the authenticated mailbox in every API call.
const userID = "me"

const (
	// MaxAttachmentSize caps attachment downloads at 25MB, the Gmail
	// message size limit.
	MaxAttachmentSize = 25 * 1024 * 1024

	// DefaultListCap bounds how many search/thread results are enriched
	// with per-message detail. The full match count is still reported;
	// callers may override the cap per request.
	DefaultListCap = 10
)

// ContentMode selects the body layout of an outbound message.
type ContentMode string

const (
	// ContentModePlain sends a single text/plain body.
	ContentModePlain ContentMode = "plain"
	// ContentModeHTML sends a single text/html body.
	ContentModeHTML ContentMode = "html"
	// ContentModeAlternative sends multipart/alternative with a text part
	// and an HTML part. Requires an HTML body; degrades to plain otherwise.
	ContentModeAlternative ContentMode = "alternative"
)

// OutboundMessage is the structured input to the message builder.
type OutboundMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string

	TextBody string
	HTMLBody string
	Mode     ContentMode

	// InReplyTo carries the Message-ID header of the message being
	// answered; ThreadID keeps the reply in its conversation.
	InReplyTo string
	ThreadID  string
}

// Attachment describes a message part whose body lives behind an
// attachment reference instead of inline data.
type Attachment struct {
	ID       string
	Filename string
	MimeType string
	Size     int64
}

// Content is the accumulated result of walking an inbound MIME part tree.
type Content struct {
	Text        string
	HTML        string
	Attachments []Attachment
}

// Body returns the preferred reading body: text when present, otherwise
// HTML. The second result reports whether HTML was substituted for absent
// text so callers can note the substitution.
func (c Content) Body() (string, bool) {
	if c.Text != "" {
		return c.Text, false
	}
	if c.HTML != "" {
		return c.HTML, true
	}
	return "", false
}
