package domain

import "time"

// Account is a registered mailbox owner. OAuth fields are nil-able: an account
// exists from registration onward, tokens arrive only once the OAuth webhook
// completes.
type Account struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// FullName is the display name of the mailbox owner.
	FullName string `json:"full_name"`
	// Email is the address the account mirrors.
	Email string `json:"email"`

	// Token holds the OAuth credentials, nil until authorization completes.
	Token *OAuthToken `json:"token,omitempty"`

	// CreatedAt is when the account was registered.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the account was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// OAuthToken is the per-account credential record persisted alongside the
// account. ExpiryDate is epoch milliseconds, zero meaning "no known expiry".
type OAuthToken struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`
	// Scope is the space-separated scope set granted by the provider.
	Scope string `json:"scope,omitempty"`
	// ExpiryDate is when the access token expires, in epoch milliseconds.
	ExpiryDate int64 `json:"expiry_date,omitempty"`
}

// IsExpired reports whether the access token must be refreshed before remote
// use. A token with no expiry is treated as valid.
func (t *OAuthToken) IsExpired(now time.Time) bool {
	if t.ExpiryDate == 0 {
		return false
	}
	return t.ExpiryDate <= now.UnixMilli()
}

// Merged returns the token that results from applying a refresh response on
// top of the current token. Providers may omit the refresh token, scope, token
// type and expiry on refresh; omitted fields retain their prior values
// (refresh token rotation is optional per provider).
func (t *OAuthToken) Merged(refreshed OAuthToken) OAuthToken {
	out := refreshed
	if out.RefreshToken == "" {
		out.RefreshToken = t.RefreshToken
	}
	if out.TokenType == "" {
		out.TokenType = t.TokenType
	}
	if out.Scope == "" {
		out.Scope = t.Scope
	}
	if out.ExpiryDate == 0 {
		out.ExpiryDate = t.ExpiryDate
	}
	return out
}

// HasToken reports whether the account has any stored credentials.
func (a *Account) HasToken() bool {
	return a.Token != nil && a.Token.AccessToken != ""
}
