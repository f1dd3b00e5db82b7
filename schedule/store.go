package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Store persists chat-id -> "HH:MM" schedules as a single JSON
// document. The format matches the original schedules.json deployment
// files, so existing files carry over.
type Store struct {
	path string

	mu        sync.Mutex
	schedules map[string]string
}

// NewStore loads the schedule file at path. A missing file is an empty
// store, not an error.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:      path,
		schedules: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read schedules file: %w", err)
	}
	if err := json.Unmarshal(data, &s.schedules); err != nil {
		return nil, fmt.Errorf("parse schedules file %q: %w", path, err)
	}
	return s, nil
}

// Get returns the stored "HH:MM" for a chat, if any.
func (s *Store) Get(chatID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.schedules[strconv.FormatInt(chatID, 10)]
	return value, ok
}

// Set stores a chat's daily time and persists the file.
func (s *Store) Set(chatID int64, hour, minute int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[strconv.FormatInt(chatID, 10)] = FormatHHMM(hour, minute)
	return s.saveLocked()
}

// Delete removes a chat's schedule and persists the file. Deleting an
// absent entry is a no-op.
func (s *Store) Delete(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strconv.FormatInt(chatID, 10)
	if _, ok := s.schedules[key]; !ok {
		return nil
	}
	delete(s.schedules, key)
	return s.saveLocked()
}

// All returns a copy of every stored schedule keyed by chat id.
func (s *Store) All() map[int64]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]string, len(s.schedules))
	for key, value := range s.schedules {
		chatID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		out[chatID] = value
	}
	return out
}

// saveLocked writes through a temp file so a crash mid-write never
// truncates the live schedule file.
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.schedules, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schedules: %w", err)
	}

	tmp := s.path + ".tmp"
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create schedules directory: %w", err)
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write schedules file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace schedules file: %w", err)
	}
	return nil
}
