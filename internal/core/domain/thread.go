package domain

import "time"

// Thread is one locally mirrored message instance of a provider-side
// conversation. Rows are created only by the sync engine's bulk upsert;
// later sync passes overwrite the message-derived fields and label
// reconciliation mutates Labels alone.
type Thread struct {
	// ID is the local row identity (UUID).
	ID string `json:"id"`
	// AccountID is the owning account. Cleared, not cascaded, when the
	// account is deleted.
	AccountID string `json:"account_id"`
	// ThreadID is the provider's conversation identifier, unique within an
	// account but not across accounts.
	ThreadID string `json:"thread_id"`

	Subject string `json:"subject,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Cc      string `json:"cc,omitempty"`
	Bcc     string `json:"bcc,omitempty"`

	// Date is the message timestamp; nil means the date header was missing
	// or unparseable.
	Date *time.Time `json:"date,omitempty"`

	// Body is the decoded text of the preferred body part.
	Body string `json:"body,omitempty"`

	// Attachments holds metadata only; bytes are fetched lazily through the
	// download contract.
	Attachments []Attachment `json:"attachments,omitempty"`

	// Labels is the provider label set (INBOX, TRASH, UNREAD, ...).
	Labels LabelSet `json:"label_ids,omitempty"`
}

// Attachment is the normalized attachment metadata extracted at mapping time.
type Attachment struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mimeType"`
	// URL is the deterministic download location parameterized by message id
	// and attachment id.
	URL string `json:"url"`
	// AttachmentID is the provider's opaque part reference.
	AttachmentID string `json:"attachment_id,omitempty"`
}
