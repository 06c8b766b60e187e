package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes requested at consent time. All are read-only.
var Scopes = []string{
	"https://www.googleapis.com/auth/classroom.courses.readonly",
	"https://www.googleapis.com/auth/classroom.announcements.readonly",
	"https://www.googleapis.com/auth/classroom.coursework.me.readonly",
	"https://www.googleapis.com/auth/classroom.rosters.readonly",
	"https://www.googleapis.com/auth/classroom.courseworkmaterials.readonly",
	"https://www.googleapis.com/auth/classroom.topics.readonly",
	"https://www.googleapis.com/auth/drive.readonly",
}

// LoadOAuthConfig reads the OAuth client secrets downloaded from the Google
// Cloud console. A missing file is ErrNotAuthenticated.
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w (credentials.json not found at %s; download it from Google Cloud Console, APIs & Services, Credentials)",
				ErrNotAuthenticated, credentialsFile)
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	cfg, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return cfg, nil
}

// TokenSource returns a refreshing token source over the stored token.
// Refreshed tokens are written back to store.
func TokenSource(ctx context.Context, cfg *oauth2.Config, store *TokenStore, logger *zap.Logger) (oauth2.TokenSource, error) {
	token, err := store.Load()
	if err != nil {
		return nil, err
	}

	return &persistingTokenSource{
		base:   cfg.TokenSource(ctx, token),
		store:  store,
		last:   token.AccessToken,
		logger: logger,
	}, nil
}

type persistingTokenSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	store  *TokenStore
	last   string
	logger *zap.Logger
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	token, err := p.base.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil && retrieveErr.Response.StatusCode < 500 {
			// Revoked or expired grant
			return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
		}
		return nil, err
	}

	if token.AccessToken != p.last {
		if err := p.store.Save(token); err != nil {
			p.logger.Warn("Failed to persist refreshed token", zap.Error(err))
		} else {
			p.logger.Debug("Persisted refreshed token", zap.Time("expiry", token.Expiry))
		}
		p.last = token.AccessToken
	}
	return token, nil
}
