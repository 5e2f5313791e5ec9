// Package secret manages the server secret used to sign download tokens. The
// secret lives in the OS keyring when one is available and falls back to a
// file in the server's temp directory otherwise, so token signatures survive
// restarts either way.
package secret

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
)

const (
	// serviceName is the keyring service identifier for all stored secrets.
	serviceName = "scriptdeck"

	// keyName is the keyring entry holding the server secret.
	keyName = "server-secret"

	// secretFileName is the fallback file inside the store directory.
	secretFileName = "secret.dat"

	// secretLen is the size of a freshly generated secret.
	secretLen = 256
)

// Store loads and persists the server secret.
type Store struct {
	dir    string
	logger *slog.Logger

	// open is swapped in tests to simulate an unavailable keyring.
	open func() (keyring.Keyring, error)
}

// NewStore creates a Store. dir is where the fallback secret file lives.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
		open: func() (keyring.Keyring, error) {
			return keyring.Open(keyring.Config{ServiceName: serviceName})
		},
	}
}

// Load returns the server secret, generating and persisting a new one on
// first use. The OS keyring is preferred; when it is unavailable the secret
// is kept in a file readable only by the server user.
func (s *Store) Load() ([]byte, error) {
	kr, err := s.open()
	if err != nil {
		s.logger.Warn("keyring unavailable, using secret file", "error", err)
		return s.loadFromFile()
	}

	item, err := kr.Get(keyName)
	if err == nil {
		return item.Data, nil
	}
	if !errors.Is(err, keyring.ErrKeyNotFound) {
		s.logger.Warn("keyring read failed, using secret file", "error", err)
		return s.loadFromFile()
	}

	generated, err := generate()
	if err != nil {
		return nil, err
	}
	if err := kr.Set(keyring.Item{Key: keyName, Data: generated}); err != nil {
		s.logger.Warn("keyring write failed, using secret file", "error", err)
		return s.loadFromFile()
	}
	return generated, nil
}

func (s *Store) loadFromFile() ([]byte, error) {
	path := filepath.Join(s.dir, secretFileName)

	//nolint:gosec // G304: path is under the server's own temp directory
	data, err := os.ReadFile(path)
	if err == nil && len(data) > 0 {
		return data, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read secret file: %w", err)
	}

	generated, err := generate()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("create secret directory: %w", err)
	}
	if err := os.WriteFile(path, generated, 0o600); err != nil {
		return nil, fmt.Errorf("write secret file: %w", err)
	}
	return generated, nil
}

func generate() ([]byte, error) {
	buf := make([]byte, secretLen)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate server secret: %w", err)
	}
	return buf, nil
}
