package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driven"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driving"
	"github.com/custodia-labs/mailmirror/internal/logger"
)

// MaxAttachmentBytes is the aggregate outbound attachment limit. The check
// runs before the MIME builder is ever invoked.
const MaxAttachmentBytes = 25 * 1024 * 1024

// Ensure MailboxWriter implements the interface.
var _ driving.MailboxService = (*MailboxWriter)(nil)

// MailboxWriter performs outbound mutations. Every label change hits the
// provider first; the local record is mutated only after remote success, so
// the mirror never claims a state the provider rejected.
type MailboxWriter struct {
	tokens   *TokenManager
	accounts driven.AccountStore
	threads  driven.ThreadStore
}

// NewMailboxWriter creates a mailbox writer.
func NewMailboxWriter(tokens *TokenManager, accounts driven.AccountStore, threads driven.ThreadStore) *MailboxWriter {
	return &MailboxWriter{
		tokens:   tokens,
		accounts: accounts,
		threads:  threads,
	}
}

// Send validates, assembles and transmits an outbound message. The sender
// address is the account's own email.
func (s *MailboxWriter) Send(ctx context.Context, accountID string, req driving.SendRequest) (string, error) {
	if err := validateEmail(req.To); err != nil {
		return "", err
	}

	var total int
	for _, att := range req.Attachments {
		total += len(att.Data)
	}
	if total > MaxAttachmentBytes {
		return "", fmt.Errorf("%w: %d bytes", domain.ErrAttachmentTooLarge, total)
	}

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return "", err
	}

	mailbox, err := s.tokens.PrepareClient(ctx, accountID)
	if err != nil {
		return "", err
	}

	builder := NewRawMessage(account.Email, req.To).
		Cc(req.Cc).
		Bcc(req.Bcc).
		Subject(req.Subject).
		Body(req.Body)
	for _, att := range req.Attachments {
		builder.Attach(att.Filename, att.MIMEType, att.Data)
	}

	messageID, err := mailbox.Send(ctx, builder.Encode())
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	logger.Info("Sent message %s from account %s", messageID, accountID)
	return messageID, nil
}

// Trash moves a thread to the trash remotely, then mirrors TRASH/INBOX
// exclusivity into the local label set.
func (s *MailboxWriter) Trash(ctx context.Context, accountID, threadID string) (*domain.Thread, error) {
	trashed := true
	return s.applyLabelChange(ctx, accountID, threadID, nil, nil, &trashed)
}

// Restore takes a thread out of the trash remotely and locally.
func (s *MailboxWriter) Restore(ctx context.Context, accountID, threadID string) (*domain.Thread, error) {
	trashed := false
	return s.applyLabelChange(ctx, accountID, threadID, nil, nil, &trashed)
}

// MarkRead clears the UNREAD label remotely and locally.
func (s *MailboxWriter) MarkRead(ctx context.Context, accountID, threadID string) (*domain.Thread, error) {
	return s.applyLabelChange(ctx, accountID, threadID, nil, []string{domain.LabelUnread}, nil)
}

// MarkUnread sets the UNREAD label remotely and locally.
func (s *MailboxWriter) MarkUnread(ctx context.Context, accountID, threadID string) (*domain.Thread, error) {
	return s.applyLabelChange(ctx, accountID, threadID, []string{domain.LabelUnread}, nil, nil)
}

// applyLabelChange is the reconciliation primitive. A thread missing locally
// is fatal; the remote mutation must succeed before any local write happens.
// Local algebra: remove, then add, then the trash transition when requested.
func (s *MailboxWriter) applyLabelChange(
	ctx context.Context,
	accountID, threadID string,
	add, remove []string,
	trashed *bool,
) (*domain.Thread, error) {
	thread, err := s.threads.GetByAccountAndThreadID(ctx, accountID, threadID)
	if err != nil {
		return nil, err
	}

	mailbox, err := s.tokens.PrepareClient(ctx, accountID)
	if err != nil {
		return nil, err
	}

	switch {
	case trashed != nil && *trashed:
		err = mailbox.TrashThread(ctx, threadID)
	case trashed != nil:
		err = mailbox.UntrashThread(ctx, threadID)
	default:
		err = mailbox.ModifyThread(ctx, threadID, add, remove)
	}
	if err != nil {
		return nil, fmt.Errorf("remote label change: %w", err)
	}

	labels := thread.Labels.Apply(add, remove)
	if trashed != nil {
		labels = labels.SetTrashed(*trashed)
	}
	if err := s.threads.UpdateLabels(ctx, accountID, threadID, labels); err != nil {
		return nil, fmt.Errorf("update local labels: %w", err)
	}

	thread.Labels = labels
	return thread, nil
}

// DownloadAttachment runs the staged fetch pipeline: resolve the message and
// attachment ids from the stored URL, pull the bytes through the provider and
// hand them back with the caller-supplied metadata.
func (s *MailboxWriter) DownloadAttachment(
	ctx context.Context,
	accountID, url, filename, mimeType string,
) (*driving.AttachmentDownload, error) {
	messageID, attachmentID, err := parseAttachmentURL(url)
	if err != nil {
		return nil, err
	}

	mailbox, err := s.tokens.PrepareClient(ctx, accountID)
	if err != nil {
		return nil, err
	}

	data, err := mailbox.Attachment(ctx, messageID, attachmentID)
	if err != nil {
		return nil, fmt.Errorf("fetch attachment: %w", err)
	}

	return &driving.AttachmentDownload{
		Filename: filename,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

// parseAttachmentURL extracts the message and attachment ids from the
// deterministic download URL produced at mapping time.
func parseAttachmentURL(url string) (messageID, attachmentID string, err error) {
	segments := strings.Split(strings.TrimSuffix(url, "/"), "/")
	for i := 0; i+3 < len(segments); i++ {
		if segments[i] == "messages" && segments[i+2] == "attachments" {
			messageID, attachmentID = segments[i+1], segments[i+3]
			if messageID != "" && attachmentID != "" {
				return messageID, attachmentID, nil
			}
		}
	}
	return "", "", fmt.Errorf("%w: malformed attachment url %q", domain.ErrInvalidInput, url)
}
