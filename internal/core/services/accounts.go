package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driven"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driving"
	"github.com/custodia-labs/mailmirror/internal/logger"
)

// Ensure AccountManager implements the interface.
var _ driving.AccountService = (*AccountManager)(nil)

// AccountManager handles account registration, partial updates and the OAuth
// authorization callback.
type AccountManager struct {
	accounts driven.AccountStore
	provider driven.Provider
	scopes   []string
}

// NewAccountManager creates an account manager. The scopes are requested when
// building authorization URLs.
func NewAccountManager(accounts driven.AccountStore, provider driven.Provider, scopes []string) *AccountManager {
	return &AccountManager{
		accounts: accounts,
		provider: provider,
		scopes:   scopes,
	}
}

// Create registers an account and returns the authorization URL the owner
// must visit. The account email doubles as the OAuth state parameter so the
// callback can find the account again.
func (s *AccountManager) Create(ctx context.Context, fullName, email string) (*domain.Account, string, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, "", fmt.Errorf("%w: full name is required", domain.ErrInvalidInput)
	}
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:        uuid.New().String(),
		FullName:  fullName,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, "", fmt.Errorf("save account: %w", err)
	}

	authURL := s.provider.AuthURL(s.scopes, account.Email)
	logger.Info("Registered account %s (%s)", account.ID, account.Email)
	return &account, authURL, nil
}

// Update applies a partial update and returns the updated account.
func (s *AccountManager) Update(ctx context.Context, id string, update driving.AccountUpdate) (*domain.Account, error) {
	account, err := s.accounts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.FullName != nil {
		if strings.TrimSpace(*update.FullName) == "" {
			return nil, fmt.Errorf("%w: full name is required", domain.ErrInvalidInput)
		}
		account.FullName = *update.FullName
	}
	if update.Email != nil {
		if err := validateEmail(*update.Email); err != nil {
			return nil, err
		}
		account.Email = *update.Email
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.Save(ctx, *account); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}
	return account, nil
}

// Get retrieves an account by ID.
func (s *AccountManager) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.Get(ctx, id)
}

// List returns all registered accounts.
func (s *AccountManager) List(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.List(ctx)
}

// CompleteOAuth exchanges the authorization code and persists the token on
// the account whose email matches the state parameter.
func (s *AccountManager) CompleteOAuth(ctx context.Context, code, state string) (*domain.Account, error) {
	if code == "" || state == "" {
		return nil, fmt.Errorf("%w: code and state are required", domain.ErrInvalidInput)
	}

	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	account, err := s.accounts.GetByEmail(ctx, state)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.SaveToken(ctx, account.ID, *token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}

	account.Token = token
	logger.Info("Authorized account %s (%s)", account.ID, account.Email)
	return account, nil
}

// validateEmail rejects addresses the mail provider would not accept.
func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email %q", domain.ErrInvalidInput, email)
	}
	return nil
}
