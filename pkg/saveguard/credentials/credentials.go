// Package credentials stores the device bearer token used to
// authenticate uploads. The Store interface is the boundary the core
// consumes; callers may supply their own implementation (e.g. an OS
// keychain bridge), with a file-backed default provided here.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ErrNotAuthenticated indicates that no token is stored. Callers treat
// it as a precondition failure, not an environmental one.
var ErrNotAuthenticated = errors.New("not authenticated")

// Store supplies and persists the device bearer token.
type Store interface {
	// Token returns the stored token, or ErrNotAuthenticated when none
	// is stored.
	Token() (string, error)

	// Save persists a token, replacing any existing one.
	Save(token string) error

	// Delete removes the stored token. Deleting a missing token is not
	// an error.
	Delete() error
}

// FileStore persists the token in a mode-0600 file.
type FileStore struct {
	path string
}

// DefaultTokenPath returns the token location under XDG data home.
func DefaultTokenPath() string {
	return filepath.Join(xdg.DataHome, "saveguard", "token")
}

// NewFileStore creates a file-backed token store. An empty path uses
// DefaultTokenPath().
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultTokenPath()
	}
	return &FileStore{path: path}
}

// Token reads the stored token.
func (s *FileStore) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotAuthenticated
		}
		return "", fmt.Errorf("reading token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// Save writes the token with owner-only permissions.
func (s *FileStore) Save(token string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// Delete removes the token file.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}
