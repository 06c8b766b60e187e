package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/oauth2"
)

// ErrNotAuthenticated means no usable credentials or tokens are stored
var ErrNotAuthenticated = errors.New("not authenticated: run `classroom-mcp auth` first to set up credentials")

const tokenFileMode = 0o600

// TokenStore persists the OAuth token as JSON
type TokenStore struct {
	fs   billy.Filesystem
	name string
}

// NewTokenStore creates a store for the file name inside fs
func NewTokenStore(fs billy.Filesystem, name string) *TokenStore {
	return &TokenStore{fs: fs, name: name}
}

// NewFileTokenStore creates a store for an absolute token path
func NewFileTokenStore(path string) *TokenStore {
	return NewTokenStore(osfs.New(filepath.Dir(path)), filepath.Base(path))
}

// Load reads the stored token. A missing file is ErrNotAuthenticated.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := util.ReadFile(s.fs, s.name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}
	return &token, nil
}

// Save replaces the stored token, readable by the owner only
func (s *TokenStore) Save(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	tmp := s.name + ".tmp"
	if err := util.WriteFile(s.fs, tmp, data, tokenFileMode); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.name); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}
