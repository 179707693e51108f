// Package credstore persists the single OAuth credential record on local disk.
//
// The record is sealed at rest under a locally generated key file, so a
// synced or backed-up config directory does not leak the token in plaintext.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starview-app/starview/internal/errs"
	"github.com/starview-app/starview/internal/model"
)

// namespace is the fixed key the single credential record lives under.
const namespace = "oauth2"

// Store persists and retrieves the OAuth credential.
type Store interface {
	// Save atomically writes the credential. Failure is a PersistenceError.
	Save(cred model.Credential) error
	// Load returns the stored credential, or errs.ErrNoCredential when none
	// exists. Absence is a normal first-run outcome, not a failure.
	Load() (*model.Credential, error)
	// Clear removes the stored credential. Clearing an absent record is a no-op.
	Clear() error
}

// FileStore is a Store backed by a sealed JSON file.
type FileStore struct {
	path    string
	keyPath string
}

// NewFileStore constructs a file-backed credential store. The key file is
// created on first Save if it does not exist yet.
func NewFileStore(path, keyPath string) *FileStore {
	return &FileStore{path: path, keyPath: keyPath}
}

// record is the on-disk document, a single fixed-namespace entry.
type record map[string]model.Credential

// Save writes the credential via temp file + rename so the record is never
// partially written.
func (s *FileStore) Save(cred model.Credential) error {
	key, err := s.loadOrCreateKey()
	if err != nil {
		return &errs.PersistenceError{Err: err}
	}
	plain, err := json.Marshal(record{namespace: cred})
	if err != nil {
		return &errs.PersistenceError{Err: err}
	}
	sealed, err := seal(key, plain)
	if err != nil {
		return &errs.PersistenceError{Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return &errs.PersistenceError{Err: err}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return &errs.PersistenceError{Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &errs.PersistenceError{Err: err}
	}
	return nil
}

// Load reads and unseals the credential record.
func (s *FileStore) Load() (*model.Credential, error) {
	sealed, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.ErrNoCredential
		}
		return nil, fmt.Errorf("read credential: %w", err)
	}
	key, err := os.ReadFile(s.keyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.ErrNoCredential
		}
		return nil, fmt.Errorf("read credential key: %w", err)
	}
	plain, err := open(key, sealed)
	if err != nil {
		return nil, fmt.Errorf("unseal credential: %w", err)
	}
	var rec record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	cred, ok := rec[namespace]
	if !ok {
		return nil, errs.ErrNoCredential
	}
	return &cred, nil
}

// Clear removes the credential file, keeping the key file for reuse.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &errs.PersistenceError{Err: err}
	}
	return nil
}

func (s *FileStore) loadOrCreateKey() ([]byte, error) {
	key, err := os.ReadFile(s.keyPath)
	if err == nil {
		if len(key) != keyLen {
			return nil, fmt.Errorf("credential key file has %d bytes, want %d", len(key), keyLen)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	key, err = randBytes(keyLen)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(s.keyPath), 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.keyPath, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
