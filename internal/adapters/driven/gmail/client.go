package gmail

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driven"
)

// DefaultScopes grants full mailbox access, required for sending, label
// mutation and attachment fetches.
var DefaultScopes = []string{gmailapi.MailGoogleComScope}

// Config holds the OAuth client settings for the Gmail provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Provider implements driven.Provider against the Gmail API.
type Provider struct {
	oauth   oauth2.Config
	limiter *RateLimiter
}

var _ driven.Provider = (*Provider)(nil)

// NewProvider creates a Gmail provider with the default rate limits.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
		},
		limiter: NewRateLimiter(),
	}
}

// AuthURL builds the authorization URL for the given scopes and state.
// Offline access is requested so the provider issues a refresh token, and
// consent is forced so re-registration rotates it.
func (p *Provider) AuthURL(scopes []string, state string) string {
	conf := p.oauth
	conf.Scopes = scopes
	return conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for a token.
func (p *Provider) Exchange(ctx context.Context, code string) (*domain.OAuthToken, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", wrapError(err))
	}
	return fromOAuth2Token(token), nil
}

// Refresh obtains a new access token from a refresh token. Fields the
// provider chose not to rotate come back empty; merging is the caller's
// business.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*domain.OAuthToken, error) {
	source := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", wrapError(err))
	}

	refreshed := fromOAuth2Token(token)
	if refreshed.RefreshToken == refreshToken {
		// oauth2 echoes the input when the provider does not rotate; report
		// that as an omitted field instead.
		refreshed.RefreshToken = ""
	}
	return refreshed, nil
}

// Mailbox returns a handle bound to the given token.
func (p *Provider) Mailbox(ctx context.Context, token *domain.OAuthToken) (driven.Mailbox, error) {
	if token == nil || token.AccessToken == "" {
		return nil, domain.ErrUnauthorized
	}

	source := oauth2.StaticTokenSource(toOAuth2Token(token))
	service, err := gmailapi.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}

	return &mailbox{
		service: service,
		limiter: p.limiter,
	}, nil
}

// fromOAuth2Token converts an oauth2 token to the domain record.
func fromOAuth2Token(token *oauth2.Token) *domain.OAuthToken {
	out := &domain.OAuthToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		out.Scope = scope
	}
	if !token.Expiry.IsZero() {
		out.ExpiryDate = token.Expiry.UnixMilli()
	}
	return out
}

// toOAuth2Token converts the domain record to an oauth2 token.
func toOAuth2Token(token *domain.OAuthToken) *oauth2.Token {
	out := &oauth2.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if token.ExpiryDate != 0 {
		out.Expiry = time.UnixMilli(token.ExpiryDate)
	}
	return out
}
