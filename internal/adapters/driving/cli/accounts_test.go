package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driving"
)

// mockAccountService implements driving.AccountService for testing.
type mockAccountService struct {
	accounts  []domain.Account
	created   *domain.Account
	authURL   string
	createErr error
	listErr   error
}

func (m *mockAccountService) Create(_ context.Context, fullName, email string) (*domain.Account, string, error) {
	if m.createErr != nil {
		return nil, "", m.createErr
	}
	m.created = &domain.Account{ID: "acc-new", FullName: fullName, Email: email}
	return m.created, m.authURL, nil
}

func (m *mockAccountService) Update(context.Context, string, driving.AccountUpdate) (*domain.Account, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAccountService) Get(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrNotFound
}

func (m *mockAccountService) List(context.Context) ([]domain.Account, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.accounts, nil
}

func (m *mockAccountService) CompleteOAuth(context.Context, string, string) (*domain.Account, error) {
	return nil, errors.New("not implemented")
}

func setupAccountsTest(mock *mockAccountService) func() {
	oldAccounts := accountService
	accountService = mock
	return func() {
		accountService = oldAccounts
	}
}

func TestAccountsCmd_ListEmpty(t *testing.T) {
	cleanup := setupAccountsTest(&mockAccountService{})
	defer cleanup()

	out, err := execute("accounts", "list")

	assert.NoError(t, err)
	assert.Contains(t, out, "No accounts registered.")
}

func TestAccountsCmd_ListShowsAuthorization(t *testing.T) {
	cleanup := setupAccountsTest(&mockAccountService{accounts: []domain.Account{
		{ID: "acc-1", FullName: "Ada Lovelace", Email: "ada@example.com", Token: &domain.OAuthToken{AccessToken: "tok"}},
		{ID: "acc-2", FullName: "Alan Turing", Email: "alan@example.com"},
	}})
	defer cleanup()

	out, err := execute("accounts", "list")

	assert.NoError(t, err)
	assert.Contains(t, out, "acc-1  Ada Lovelace <ada@example.com>  authorized")
	assert.Contains(t, out, "acc-2  Alan Turing <alan@example.com>  not authorized")
}

func TestAccountsCmd_BareListsAccounts(t *testing.T) {
	cleanup := setupAccountsTest(&mockAccountService{})
	defer cleanup()

	out, err := execute("accounts")

	assert.NoError(t, err)
	assert.Contains(t, out, "No accounts registered.")
}

func TestAccountsCmd_AddPrintsAuthURL(t *testing.T) {
	mock := &mockAccountService{authURL: "https://accounts.google.com/o/oauth2/auth?state=ada%40example.com"}
	cleanup := setupAccountsTest(mock)
	defer cleanup()

	out, err := execute("accounts", "add", "Ada Lovelace", "ada@example.com")

	assert.NoError(t, err)
	assert.Contains(t, out, "Registered account acc-new.")
	assert.Contains(t, out, "https://accounts.google.com/o/oauth2/auth?state=ada%40example.com")
	assert.Equal(t, "Ada Lovelace", mock.created.FullName)
}

func TestAccountsCmd_AddValidationError(t *testing.T) {
	cleanup := setupAccountsTest(&mockAccountService{createErr: domain.ErrInvalidInput})
	defer cleanup()

	_, err := execute("accounts", "add", "Ada", "not-an-email")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "registering account")
}

func TestAccountsCmd_ServiceNotConfigured(t *testing.T) {
	oldAccounts := accountService
	accountService = nil
	defer func() {
		accountService = oldAccounts
	}()

	_, err := execute("accounts", "list")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "account service not configured")
}
