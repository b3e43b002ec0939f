// Package watermark persists the "synced up to" timestamp for each sync
// category. Marks are read at run start and written back only after the
// corresponding batch has been durably applied, so a crashed run re-syncs
// from the last good point instead of losing or duplicating data.
package watermark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Marks holds the per-category watermarks.
type Marks map[string]time.Time

// Get returns the watermark for category, or fallback when none is
// recorded yet.
func (m Marks) Get(category string, fallback time.Time) time.Time {
	if t, ok := m[category]; ok {
		return t
	}
	return fallback
}

// Set records a new watermark for category.
func (m Marks) Set(category string, t time.Time) {
	m[category] = t.UTC()
}

// Store reads and writes marks as a small JSON file of
// category → RFC 3339 timestamp.
type Store struct {
	path string
}

// NewStore points a Store at path. The file need not exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the marks. A missing file is an empty set, not an error.
func (s *Store) Load() (Marks, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Marks{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read watermarks: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode watermarks %s: %w", s.path, err)
	}
	marks := make(Marks, len(raw))
	for category, stamp := range raw {
		t, err := time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			return nil, fmt.Errorf("watermark %q: %w", category, err)
		}
		marks[category] = t
	}
	return marks, nil
}

// Save writes the marks. The write goes through a temp file and rename
// so a crash mid-write cannot corrupt the previous marks.
func (s *Store) Save(marks Marks) error {
	raw := make(map[string]string, len(marks))
	for category, t := range marks {
		raw[category] = t.UTC().Format(time.RFC3339Nano)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".watermarks-*")
	if err != nil {
		return fmt.Errorf("write watermarks: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write watermarks: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write watermarks: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
