package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// DurableStore mirrors a session across process restarts. Exactly the five
// session fields are stored as flat string key/value pairs; a missing
// username key means "no remembered session".
type DurableStore interface {
	Load() (*Session, error)
	Save(Session) error
	Clear() error
}

const (
	keyUsername       = "username"
	keyPassword       = "password"
	keyUserType       = "usertype"
	keyEntrypoint     = "entrypoint"
	keyEntrypointName = "entrypoint_name"
)

// FileStore persists the session mirror as a YAML key/value file, created
// with owner-only permissions since it carries the credential hash.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path. The parent directory is
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the mirror. A missing file or an entry without a username both
// mean no remembered session, reported as (nil, nil).
func (f *FileStore) Load() (*Session, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: read %s: %w", f.path, err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("session: parse %s: %w", f.path, err)
	}
	if values[keyUsername] == "" {
		return nil, nil
	}

	return &Session{
		Username:       values[keyUsername],
		PasswordHash:   values[keyPassword],
		UserType:       values[keyUserType],
		EntrypointURL:  values[keyEntrypoint],
		EntrypointName: values[keyEntrypointName],
	}, nil
}

// Save writes the five-field mirror.
func (f *FileStore) Save(sess Session) error {
	values := map[string]string{
		keyUsername:       sess.Username,
		keyPassword:       sess.PasswordHash,
		keyUserType:       sess.UserType,
		keyEntrypoint:     sess.EntrypointURL,
		keyEntrypointName: sess.EntrypointName,
	}

	raw, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("session: marshal mirror: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("session: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", f.path, err)
	}
	return nil
}

// Clear removes the mirror file. A file that never existed is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: remove %s: %w", f.path, err)
	}
	return nil
}

// MemoryStore is an in-process DurableStore for isolated test instances.
type MemoryStore struct {
	mu   sync.Mutex
	sess *Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the held session, if any.
func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil, nil
	}
	copied := *m.sess
	return &copied, nil
}

// Save replaces the held session.
func (m *MemoryStore) Save(sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := sess
	m.sess = &copied
	return nil
}

// Clear drops the held session.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
