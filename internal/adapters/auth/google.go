// Package auth acquires and refreshes the Google access token the row
// store needs. Tokens are obtained interactively once via the OAuth
// authorization-code flow with PKCE, then kept fresh from the persisted
// refresh token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNotAuthenticated indicates no stored credentials exist yet; the user
// must complete the consent flow first.
var ErrNotAuthenticated = errors.New("not authenticated with Google")

// AuthError wraps a token acquisition or refresh failure. Callers
// propagate it unchanged rather than retrying.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TokenStore persists the OAuth token between process runs.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(tok *oauth2.Token) error
}

// Google endpoints are spelled out here so only the core oauth2 package
// is needed.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// Scopes: the spreadsheet itself plus Drive search/create limited to
// files this app created.
var googleScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.file",
}

// GoogleProvider implements the access provider over Google's OAuth
// endpoints, persisting tokens through a TokenStore.
type GoogleProvider struct {
	conf  *oauth2.Config
	store TokenStore

	mu       sync.Mutex
	verifier string
	source   oauth2.TokenSource
	last     *oauth2.Token
}

// NewGoogleProvider creates a provider for the given OAuth client.
func NewGoogleProvider(clientID, clientSecret, redirectURL string, store TokenStore) *GoogleProvider {
	return &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       googleScopes,
			Endpoint:     googleEndpoint,
		},
		store: store,
	}
}

// AuthURL returns the consent URL to send the user to. A fresh PKCE
// verifier is generated per call and held for the matching Exchange.
func (p *GoogleProvider) AuthURL(state string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verifier = oauth2.GenerateVerifier()
	return p.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(p.verifier),
	)
}

// Exchange trades the authorization code for tokens and persists them.
// PRE: code came from the redirect of the most recent AuthURL
// POST: GetValidAccessToken succeeds until the refresh token is revoked
func (p *GoogleProvider) Exchange(ctx context.Context, code string) error {
	p.mu.Lock()
	verifier := p.verifier
	p.mu.Unlock()
	if verifier == "" {
		return &AuthError{Op: "exchange", Err: errors.New("no pending authorization; call AuthURL first")}
	}

	tok, err := p.conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return &AuthError{Op: "exchange", Err: err}
	}
	if err := p.store.Save(tok); err != nil {
		return &AuthError{Op: "save token", Err: err}
	}

	p.mu.Lock()
	p.verifier = ""
	p.last = tok
	p.source = p.conf.TokenSource(context.Background(), tok)
	p.mu.Unlock()
	return nil
}

// GetValidAccessToken returns a currently valid access token, refreshing
// it from the stored refresh token when expired. Refreshed tokens are
// persisted so the next process start skips the consent flow.
func (p *GoogleProvider) GetValidAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source == nil {
		tok, err := p.store.Load()
		if err != nil {
			return "", &AuthError{Op: "load token", Err: err}
		}
		if tok == nil {
			return "", &AuthError{Op: "load token", Err: ErrNotAuthenticated}
		}
		p.last = tok
		p.source = p.conf.TokenSource(context.Background(), tok)
	}

	tok, err := p.source.Token()
	if err != nil {
		return "", &AuthError{Op: "refresh", Err: err}
	}
	if p.last == nil || tok.AccessToken != p.last.AccessToken {
		if err := p.store.Save(tok); err != nil {
			return "", &AuthError{Op: "save token", Err: err}
		}
		p.last = tok
	}
	return tok.AccessToken, nil
}
