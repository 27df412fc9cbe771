package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/gmailbox/internal/instrumentation"
	"github.com/teemow/gmailbox/internal/logging"
)

// Client wraps the Gmail Users service with an authenticated HTTP client.
// The underlying service is safe for concurrent use, so a single Client is
// shared across concurrent batch items.
type Client struct {
	svc     *gmail.UsersService
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewClient creates a Gmail client from an authenticated HTTP client
// produced by the credential manager.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users}, nil
}

// SetMetrics attaches a metrics recorder; nil disables recording.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

// SetLogger attaches a logger for per-call diagnostics; nil disables them.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

func (c *Client) record(op string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	duration := time.Since(start)
	c.metrics.RecordGmailOperation(context.Background(), op, status, duration)

	if c.logger == nil {
		return
	}
	if err != nil {
		c.logger.Warn("gmail api call failed",
			logging.Operation(op),
			logging.Err(err),
			logging.KeyDuration, duration,
		)
	} else {
		c.logger.Debug("gmail api call",
			logging.Operation(op),
			logging.KeyDuration, duration,
		)
	}
}

// SendMessage builds and sends an outbound message. It returns the new
// message id and the thread it landed in.
func (c *Client) SendMessage(msg *OutboundMessage) (id, threadID string, err error) {
	defer func(start time.Time) { c.record("messages.send", start, err) }(time.Now())

	raw, err := BuildRawMessage(msg)
	if err != nil {
		return "", "", err
	}

	sent, err := c.svc.Messages.Send(userID, &gmail.Message{
		Raw:      raw,
		ThreadId: msg.ThreadID,
	}).Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to send message: %w", err)
	}

	if c.logger != nil && len(msg.To) > 0 {
		// Recipients are PII; log a correlatable hash plus the domain.
		c.logger.Info("message sent",
			logging.UserHash(msg.To[0]),
			slog.String("recipient_domain", logging.ExtractDomain(msg.To[0])),
		)
	}
	return sent.Id, sent.ThreadId, nil
}

// GetMessage retrieves a full message including its MIME part tree.
func (c *Client) GetMessage(messageID string) (msg *gmail.Message, err error) {
	defer func(start time.Time) { c.record("messages.get", start, err) }(time.Now())

	msg, err = c.svc.Messages.Get(userID, messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// SearchMessages lists message ids matching the query. It returns up to
// maxResults ids plus the provider's estimate of the total match count.
func (c *Client) SearchMessages(q string, maxResults int64) (msgs []*gmail.Message, total int64, err error) {
	defer func(start time.Time) { c.record("messages.list", start, err) }(time.Now())

	if maxResults <= 0 {
		maxResults = DefaultListCap
	}
	res, err := c.svc.Messages.List(userID).Q(q).MaxResults(maxResults).Do()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search messages: %w", err)
	}
	return res.Messages, res.ResultSizeEstimate, nil
}

// ModifyMessage adds and removes labels on a message.
func (c *Client) ModifyMessage(messageID string, addLabelIDs, removeLabelIDs []string) (err error) {
	defer func(start time.Time) { c.record("messages.modify", start, err) }(time.Now())

	_, err = c.svc.Messages.Modify(userID, messageID, &gmail.ModifyMessageRequest{
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}).Do()
	if err != nil {
		return fmt.Errorf("failed to modify message %s: %w", messageID, err)
	}
	return nil
}

// DeleteMessage permanently deletes a message, bypassing the trash.
func (c *Client) DeleteMessage(messageID string) (err error) {
	defer func(start time.Time) { c.record("messages.delete", start, err) }(time.Now())

	if err = c.svc.Messages.Delete(userID, messageID).Do(); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}
	return nil
}

// TrashMessage moves a message to the trash.
func (c *Client) TrashMessage(messageID string) (err error) {
	defer func(start time.Time) { c.record("messages.trash", start, err) }(time.Now())

	if _, err = c.svc.Messages.Trash(userID, messageID).Do(); err != nil {
		return fmt.Errorf("failed to trash message %s: %w", messageID, err)
	}
	return nil
}

// UntrashMessage restores a message from the trash.
func (c *Client) UntrashMessage(messageID string) (err error) {
	defer func(start time.Time) { c.record("messages.untrash", start, err) }(time.Now())

	if _, err = c.svc.Messages.Untrash(userID, messageID).Do(); err != nil {
		return fmt.Errorf("failed to untrash message %s: %w", messageID, err)
	}
	return nil
}

// CreateDraft stores an outbound message as a draft and returns its id.
func (c *Client) CreateDraft(msg *OutboundMessage) (draftID string, err error) {
	defer func(start time.Time) { c.record("drafts.create", start, err) }(time.Now())

	raw, err := BuildRawMessage(msg)
	if err != nil {
		return "", err
	}

	draft, err := c.svc.Drafts.Create(userID, &gmail.Draft{
		Message: &gmail.Message{Raw: raw, ThreadId: msg.ThreadID},
	}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create draft: %w", err)
	}
	return draft.Id, nil
}

// GetDraft retrieves a draft with its full message.
func (c *Client) GetDraft(draftID string) (draft *gmail.Draft, err error) {
	defer func(start time.Time) { c.record("drafts.get", start, err) }(time.Now())

	draft, err = c.svc.Drafts.Get(userID, draftID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get draft %s: %w", draftID, err)
	}
	return draft, nil
}

// ListDrafts lists up to maxResults drafts.
func (c *Client) ListDrafts(maxResults int64) (drafts []*gmail.Draft, err error) {
	defer func(start time.Time) { c.record("drafts.list", start, err) }(time.Now())

	if maxResults <= 0 {
		maxResults = DefaultListCap
	}
	res, err := c.svc.Drafts.List(userID).MaxResults(maxResults).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return res.Drafts, nil
}

// SendDraft sends an existing draft and returns the sent message id.
func (c *Client) SendDraft(draftID string) (messageID string, err error) {
	defer func(start time.Time) { c.record("drafts.send", start, err) }(time.Now())

	sent, err := c.svc.Drafts.Send(userID, &gmail.Draft{Id: draftID}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send draft %s: %w", draftID, err)
	}
	return sent.Id, nil
}

// DeleteDraft discards a draft.
func (c *Client) DeleteDraft(draftID string) (err error) {
	defer func(start time.Time) { c.record("drafts.delete", start, err) }(time.Now())

	if err = c.svc.Drafts.Delete(userID, draftID).Do(); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", draftID, err)
	}
	return nil
}

// ListLabels returns all labels in the mailbox.
func (c *Client) ListLabels() (labels []*gmail.Label, err error) {
	defer func(start time.Time) { c.record("labels.list", start, err) }(time.Now())

	res, err := c.svc.Labels.List(userID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return res.Labels, nil
}

// CreateLabel creates a user label with the given name.
func (c *Client) CreateLabel(name string) (label *gmail.Label, err error) {
	defer func(start time.Time) { c.record("labels.create", start, err) }(time.Now())

	label, err = c.svc.Labels.Create(userID, &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create label %q: %w", name, err)
	}
	return label, nil
}

// DeleteLabel removes a user label.
func (c *Client) DeleteLabel(labelID string) (err error) {
	defer func(start time.Time) { c.record("labels.delete", start, err) }(time.Now())

	if err = c.svc.Labels.Delete(userID, labelID).Do(); err != nil {
		return fmt.Errorf("failed to delete label %s: %w", labelID, err)
	}
	return nil
}

// GetThread retrieves a full thread with all its messages.
func (c *Client) GetThread(threadID string) (thread *gmail.Thread, err error) {
	defer func(start time.Time) { c.record("threads.get", start, err) }(time.Now())

	thread, err = c.svc.Threads.Get(userID, threadID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}
	return thread, nil
}

// ListThreads lists thread ids matching the query, plus the provider's
// estimate of the total match count.
func (c *Client) ListThreads(q string, maxResults int64) (threads []*gmail.Thread, total int64, err error) {
	defer func(start time.Time) { c.record("threads.list", start, err) }(time.Now())

	if maxResults <= 0 {
		maxResults = DefaultListCap
	}
	res, err := c.svc.Threads.List(userID).Q(q).MaxResults(maxResults).Do()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list threads: %w", err)
	}
	return res.Threads, res.ResultSizeEstimate, nil
}

// ListAttachments extracts attachment descriptors from a message.
func (c *Client) ListAttachments(messageID string) ([]Attachment, error) {
	msg, err := c.GetMessage(messageID)
	if err != nil {
		return nil, err
	}
	return ExtractContent(msg.Payload).Attachments, nil
}

// GetAttachment downloads and decodes an attachment body. Attachments
// above MaxAttachmentSize are refused.
func (c *Client) GetAttachment(messageID, attachmentID string) (data []byte, err error) {
	defer func(start time.Time) { c.record("attachments.get", start, err) }(time.Now())

	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if attachmentID == "" {
		return nil, fmt.Errorf("attachmentID is required")
	}

	att, err := c.svc.Messages.Attachments.Get(userID, messageID, attachmentID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", attachmentID, err)
	}
	if att.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", att.Size, MaxAttachmentSize)
	}

	data, err = DecodeRawPayload(att.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment data: %w", err)
	}
	return data, nil
}
