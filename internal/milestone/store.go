// Package milestone is the on-disk store for task descriptions. Each
// milestone lives in its own JSON file under .weft/milestones/.
package milestone

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Milestone is one requested code change.
type Milestone struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store reads and writes milestones under a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create milestone dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes a milestone, assigning an ID from the title if missing.
func (s *Store) Save(m Milestone) (Milestone, error) {
	if m.ID == "" {
		m.ID = slugify(m.Title)
	}
	if m.ID == "" {
		return m, fmt.Errorf("milestone needs a title or an id")
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return m, err
	}
	if err := os.WriteFile(s.path(m.ID), data, 0o644); err != nil {
		return m, fmt.Errorf("failed to write milestone %s: %w", m.ID, err)
	}
	return m, nil
}

// Get loads one milestone by ID.
func (s *Store) Get(id string) (Milestone, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return Milestone{}, fmt.Errorf("failed to read milestone %s: %w", id, err)
	}
	var m Milestone
	if err := json.Unmarshal(data, &m); err != nil {
		return Milestone{}, fmt.Errorf("failed to parse milestone %s: %w", id, err)
	}
	return m, nil
}

// List returns all milestones sorted by creation time, oldest first.
func (s *Store) List() ([]Milestone, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	var out []Milestone
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		m, err := s.Get(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue // skip unreadable entries
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
