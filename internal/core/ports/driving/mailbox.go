package driving

import (
	"context"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
)

// OutgoingAttachment is one attachment of an outbound message, bytes included.
type OutgoingAttachment struct {
	Filename string
	MIMEType string
	Data     []byte
}

// SendRequest describes an outbound email.
type SendRequest struct {
	To          string
	Cc          string
	Bcc         string
	Subject     string
	Body        string
	Attachments []OutgoingAttachment
}

// AttachmentDownload is the staged result of an attachment fetch.
type AttachmentDownload struct {
	Filename string
	MIMEType string
	Data     []byte
}

// MailboxService performs outbound mutations: sending mail, trash state and
// read state. Remote success is the source of truth; local records are only
// updated after the provider accepted the mutation.
type MailboxService interface {
	// Send validates, assembles and transmits an outbound message, returning
	// the provider message id.
	Send(ctx context.Context, accountID string, req SendRequest) (string, error)

	// Trash moves a thread to the trash remotely and mirrors the label change
	// locally.
	Trash(ctx context.Context, accountID, threadID string) (*domain.Thread, error)

	// Restore takes a thread out of the trash remotely and locally.
	Restore(ctx context.Context, accountID, threadID string) (*domain.Thread, error)

	// MarkRead clears the unread state remotely and locally.
	MarkRead(ctx context.Context, accountID, threadID string) (*domain.Thread, error)

	// MarkUnread sets the unread state remotely and locally.
	MarkUnread(ctx context.Context, accountID, threadID string) (*domain.Thread, error)

	// DownloadAttachment fetches attachment bytes through the provider.
	DownloadAttachment(ctx context.Context, accountID, url, filename, mimeType string) (*AttachmentDownload, error)
}
