package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

// TokenStorageType selects a credential storage backend.
type TokenStorageType string

const (
	TokenStorageTypeEnv     TokenStorageType = "env"
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeKeyring TokenStorageType = "keyring"
)

// Keyring coordinates for the OS credential store.
const (
	keyringService = "anthropic-proxy"
	keyringAccount = "upstream-api-key"
)

// TokenStore reads and writes the upstream API key for one storage backend.
// Writing an empty key clears the stored credential.
type TokenStore interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, key string) error
}

// NewTokenStore builds the store selected by the configuration.
func (a *AuthConfig) NewTokenStore() (TokenStore, error) {
	switch a.Storage {
	case TokenStorageTypeEnv:
		return &envTokenStore{key: a.apiKey}, nil
	case TokenStorageTypeFile:
		if a.KeyFile == "" {
			return nil, errors.New("file storage requires auth.key_file")
		}
		return &fileTokenStore{path: a.KeyFile}, nil
	case TokenStorageTypeKeyring:
		return &keyringTokenStore{}, nil
	default:
		return nil, fmt.Errorf("unknown token storage type %q", a.Storage)
	}
}

// envTokenStore serves the key already resolved from the environment or
// config file. It is read-only; login and logout need another backend.
type envTokenStore struct {
	key string
}

func (s *envTokenStore) Read(ctx context.Context) (string, error) {
	return s.key, nil
}

func (s *envTokenStore) Write(ctx context.Context, key string) error {
	return errors.New("env storage is read-only, set UPSTREAM_API_KEY instead")
}

// fileTokenStore keeps the key in a single file with owner-only permissions.
type fileTokenStore struct {
	path string
}

func (s *fileTokenStore) Read(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading key file %s: %w", s.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *fileTokenStore) Write(ctx context.Context, key string) error {
	if key == "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing key file %s: %w", s.path, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating key file directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(key+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing key file %s: %w", s.path, err)
	}
	return nil
}

// keyringTokenStore keeps the key in the operating system keyring.
type keyringTokenStore struct{}

func (s *keyringTokenStore) Read(ctx context.Context) (string, error) {
	key, err := keyring.Get(keyringService, keyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading keyring: %w", err)
	}
	return key, nil
}

func (s *keyringTokenStore) Write(ctx context.Context, key string) error {
	if key == "" {
		if err := keyring.Delete(keyringService, keyringAccount); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("clearing keyring: %w", err)
		}
		return nil
	}
	if err := keyring.Set(keyringService, keyringAccount, key); err != nil {
		return fmt.Errorf("writing keyring: %w", err)
	}
	return nil
}
