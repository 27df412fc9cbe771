package google

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// EnvCredentialsPath overrides the default credential file location.
const EnvCredentialsPath = "GMAILBOX_CREDENTIALS"

// TokenStore persists a single OAuth credential record as a JSON file.
//
// Absence of the file means "never authenticated" and is not an error.
// Writes replace the whole record; there is no merging. A record without
// an access token is invalid and is neither persisted nor returned.
type TokenStore struct {
	path string
}

// NewTokenStore creates a token store backed by the given file path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// DefaultTokenPath returns the credential file location: the
// GMAILBOX_CREDENTIALS environment variable if set, otherwise
// credentials.json under the user's config directory.
func DefaultTokenPath() (string, error) {
	if p := os.Getenv(EnvCredentialsPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine user config directory: %w", err)
	}
	return filepath.Join(dir, "gmailbox", "credentials.json"), nil
}

// Path returns the file path backing the store.
func (s *TokenStore) Path() string {
	return s.path
}

// Load reads the persisted credential record. A missing file yields
// (nil, nil). A present but invalid record (unparseable, or lacking an
// access token) is an error: it must never be treated as authenticated.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file %s: %w", s.path, err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse credential file %s: %w", s.path, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("credential file %s holds no access token", s.path)
	}
	return &tok, nil
}

// Save overwrites the credential record. The token must carry an access
// token; the file is written 0600 under a 0700 directory.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("refusing to persist a credential record without an access token")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential record: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential file %s: %w", s.path, err)
	}
	return nil
}
