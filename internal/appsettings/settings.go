// Package appsettings is a small local configuration store for the client
// toggles that never sync to a profile: an enumerated set of boolean keys
// persisted as a JSON file.
package appsettings

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

const (
	KeyDarkMode             = "dark_mode"
	KeyNotificationsEnabled = "notifications_enabled"
	KeyHideDistance         = "hide_distance"
)

var ErrUnknownKey = errors.New("unknown setting key")

var defaults = map[string]bool{
	KeyDarkMode:             false,
	KeyNotificationsEnabled: true,
	KeyHideDistance:         false,
}

type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]bool
}

// Open loads the store from path, falling back to defaults when the file is
// missing or unreadable. An empty path keeps the store in memory only.
func Open(path string) *Store {
	store := &Store{
		path:   path,
		values: make(map[string]bool, len(defaults)),
	}
	for key, value := range defaults {
		store.values[key] = value
	}

	if path == "" {
		return store
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return store
	}
	var persisted map[string]bool
	if err := json.Unmarshal(content, &persisted); err != nil {
		return store
	}
	for key, value := range persisted {
		if _, known := defaults[key]; known {
			store.values[key] = value
		}
	}
	return store
}

func (s *Store) Get(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return false, ErrUnknownKey
	}
	return value, nil
}

func (s *Store) Set(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := defaults[key]; !known {
		return ErrUnknownKey
	}
	s.values[key] = value
	return s.persistLocked()
}

func (s *Store) All() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]bool, len(s.values))
	for key, value := range s.values {
		snapshot[key] = value
	}
	return snapshot
}

func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	content, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, content, 0o600)
}
