package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driven"
)

// TokenManager keeps per-account OAuth tokens valid: it checks expiry,
// refreshes through the provider and persists the merged result before
// handing the token out.
type TokenManager struct {
	accounts driven.AccountStore
	provider driven.Provider

	// now is swappable for tests.
	now func() time.Time
}

// NewTokenManager creates a token manager.
func NewTokenManager(accounts driven.AccountStore, provider driven.Provider) *TokenManager {
	return &TokenManager{
		accounts: accounts,
		provider: provider,
		now:      time.Now,
	}
}

// ValidToken returns a usable token for the account, refreshing and
// persisting it first when expired. A missing account or an account without
// stored credentials yields (nil, nil): "no usable token" is a soft outcome,
// not an error. Refresh failures are returned without retry and without
// persisting a partial token.
func (m *TokenManager) ValidToken(ctx context.Context, accountID string) (*domain.OAuthToken, error) {
	account, err := m.accounts.Get(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if !account.HasToken() {
		return nil, nil
	}

	token := account.Token
	if !token.IsExpired(m.now()) {
		return token, nil
	}

	refreshed, err := m.provider.Refresh(ctx, token.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	merged := token.Merged(*refreshed)
	if err := m.accounts.SaveToken(ctx, accountID, merged); err != nil {
		return nil, fmt.Errorf("save refreshed token: %w", err)
	}

	return &merged, nil
}

// PrepareClient composes ValidToken with the provider's stateless mailbox
// factory. Callers treat any failure here as one terminal "cannot act on this
// account now" condition.
func (m *TokenManager) PrepareClient(ctx context.Context, accountID string) (driven.Mailbox, error) {
	token, err := m.ValidToken(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, domain.ErrUnauthorized
	}

	mailbox, err := m.provider.Mailbox(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("build mailbox client: %w", err)
	}
	return mailbox, nil
}
