package driven

import (
	"context"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
)

// AccountStore persists accounts and their OAuth token records.
// Implementations return domain.ErrNotFound when no account matches.
type AccountStore interface {
	// Save stores or updates an account.
	Save(ctx context.Context, account domain.Account) error

	// Get retrieves an account by ID.
	Get(ctx context.Context, id string) (*domain.Account, error)

	// GetByEmail retrieves an account by its email address.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// SaveToken persists the token record for an account, leaving the other
	// account fields untouched.
	SaveToken(ctx context.Context, accountID string, token domain.OAuthToken) error

	// List returns all registered accounts.
	List(ctx context.Context) ([]domain.Account, error)

	// Delete removes an account. Thread rows referencing it keep existing
	// with their account relation cleared.
	Delete(ctx context.Context, id string) error
}
