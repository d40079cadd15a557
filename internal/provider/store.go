package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tahsinratul/life-client/pkg/sdk"
)

// ErrNoCredentials is returned by Load when nothing has been stored.
var ErrNoCredentials = errors.New("not logged in")

// Store persists the signed-in identity between runs.
type Store interface {
	Load() (*sdk.Identity, error)
	Save(identity *sdk.Identity) error
	Delete() error
}

// FileStore keeps the identity in a JSON file readable only by the owner.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the parent directory of path if needed. A leading
// "~/" is expanded to the user's home directory.
func NewFileStore(path string) (*FileStore, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}
	return &FileStore{path: expanded}, nil
}

// Path is the credentials file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes identity to the file.
func (s *FileStore) Save(identity *sdk.Identity) error {
	if identity == nil {
		return s.Delete()
	}
	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}

// Load reads the stored identity.
func (s *FileStore) Load() (*sdk.Identity, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	var identity sdk.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return &identity, nil
}

// Delete removes the file. A missing file is not an error.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credentials file: %w", err)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
