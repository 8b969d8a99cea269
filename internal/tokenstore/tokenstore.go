// ABOUTME: Persistent storage for the single bearer token of a client session
// ABOUTME: File-backed store in the XDG config directory plus an in-memory store

package tokenstore

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store persists one bearer token. It does no validation and no expiry tracking.
type Store interface {
	Get() (string, bool)
	Set(token string) error
	Clear() error
}

// fileName is the session file inside the config directory; tokenKey is the
// fixed key the token lives under.
const (
	fileName = "session.json"
	tokenKey = "token"
)

// FileStore keeps the token in a JSON file readable only by the owner
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore returns a store rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{dir: configDir}
}

// DefaultConfigDir returns the default config directory following the XDG base directory layout
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "formationsgest")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "formationsgest")
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, fileName)
}

// Get returns the stored token. Unreadable or malformed files count as absent.
func (s *FileStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return "", false
	}
	if err != nil {
		slog.Warn("Token store unreadable", "path", s.path(), "error", err)
		return "", false
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		slog.Warn("Token store corrupt, ignoring", "path", s.path(), "error", err)
		return "", false
	}
	token := stored[tokenKey]
	return token, token != ""
}

// Set overwrites the stored token
func (s *FileStore) Set(token string) error {
	if token == "" {
		return s.Clear()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(map[string]string{tokenKey: token})
	if err != nil {
		return err
	}

	// Write then rename so a crash never leaves a half-written token
	tmp, err := os.CreateTemp(s.dir, fileName+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path())
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns a store seeded with token (empty for none)
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Get() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.Set("")
}
