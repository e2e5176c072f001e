// Package memory provides in-memory store implementations, used by tests and
// available as a lightweight backend when persistence is not needed.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driven"
)

// Ensure AccountStore implements the interface.
var _ driven.AccountStore = (*AccountStore)(nil)

// AccountStore is an in-memory implementation of driven.AccountStore.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]domain.Account),
	}
}

// Save stores or updates an account.
func (s *AccountStore) Save(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
	return nil
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(account), nil
}

// GetByEmail retrieves an account by its email address.
func (s *AccountStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if account.Email == email {
			return cloneAccount(account), nil
		}
	}
	return nil, domain.ErrNotFound
}

// SaveToken persists the token record for an account.
func (s *AccountStore) SaveToken(_ context.Context, accountID string, token domain.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	account.Token = &token
	s.accounts[accountID] = account
	return nil
}

// List returns all registered accounts.
func (s *AccountStore) List(_ context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, *cloneAccount(account))
	}
	return out, nil
}

// Delete removes an account.
func (s *AccountStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

// cloneAccount copies the account so callers cannot mutate stored state.
func cloneAccount(account domain.Account) *domain.Account {
	out := account
	if account.Token != nil {
		token := *account.Token
		out.Token = &token
	}
	return &out
}
