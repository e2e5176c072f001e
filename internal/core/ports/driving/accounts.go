package driving

import (
	"context"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
)

// AccountUpdate carries the partial fields of an account update; nil means
// "leave unchanged".
type AccountUpdate struct {
	FullName *string
	Email    *string
}

// AccountService manages account registration and the OAuth webhook.
type AccountService interface {
	// Create registers an account and returns it along with the provider
	// authorization URL the owner must visit.
	Create(ctx context.Context, fullName, email string) (*domain.Account, string, error)

	// Update applies a partial update and returns the updated account.
	Update(ctx context.Context, id string, update AccountUpdate) (*domain.Account, error)

	// Get retrieves an account by ID.
	Get(ctx context.Context, id string) (*domain.Account, error)

	// List returns all registered accounts.
	List(ctx context.Context) ([]domain.Account, error)

	// CompleteOAuth handles the authorization callback: exchanges the code
	// and persists the token on the account identified by state (the email).
	CompleteOAuth(ctx context.Context, code, state string) (*domain.Account, error)
}
