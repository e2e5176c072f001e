package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
)

// Provider is the remote mail provider contract: OAuth operations plus a
// stateless factory that binds a token value to a mailbox handle. No
// process-wide client singleton exists; every caller passes the token it
// validated.
type Provider interface {
	// AuthURL builds the authorization URL for the given scopes and state.
	AuthURL(scopes []string, state string) string

	// Exchange trades an authorization code for a token.
	Exchange(ctx context.Context, code string) (*domain.OAuthToken, error)

	// Refresh obtains a new access token from a refresh token. The returned
	// token may omit fields the provider chose not to rotate.
	Refresh(ctx context.Context, refreshToken string) (*domain.OAuthToken, error)

	// Mailbox returns a handle bound to the given token.
	Mailbox(ctx context.Context, token *domain.OAuthToken) (Mailbox, error)
}

// ThreadQuery filters a remote thread listing. A zero After/Before means no
// bound on that side; at most one of them is set per sync pass.
type ThreadQuery struct {
	// After requests threads with messages strictly newer than this instant.
	After time.Time
	// Before requests threads with messages strictly older than this instant.
	Before time.Time
	// PageSize caps the number of thread refs returned.
	PageSize int64
	// PageToken continues a previous listing.
	PageToken string
}

// Mailbox is a provider client bound to one account's token.
type Mailbox interface {
	// ListThreads returns one page of thread references matching the query.
	ListThreads(ctx context.Context, q ThreadQuery) (*domain.ThreadList, error)

	// GetThread fetches a full conversation.
	GetThread(ctx context.Context, threadID string) (*domain.RemoteThread, error)

	// GetMessage fetches one full message.
	GetMessage(ctx context.Context, messageID string) (*domain.RemoteMessage, error)

	// Send transmits a base64url-encoded raw MIME message and returns the
	// provider's message id.
	Send(ctx context.Context, raw string) (string, error)

	// ModifyThread applies label additions and removals to a conversation.
	ModifyThread(ctx context.Context, threadID string, add, remove []string) error

	// TrashThread moves a conversation to the trash.
	TrashThread(ctx context.Context, threadID string) error

	// UntrashThread restores a conversation from the trash.
	UntrashThread(ctx context.Context, threadID string) error

	// Attachment fetches the decoded bytes of one attachment.
	Attachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)
}
