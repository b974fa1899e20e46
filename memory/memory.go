// Package memory keeps a persistent log of past interactions (searches,
// crawls, operator notes) so agent clients can recall what the service
// already looked up. Storage is a single JSON file with rotated backups.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/scout/config"
)

// Interaction kinds.
const (
	KindSearch = "search"
	KindCrawl  = "crawl"
	KindNote   = "note"
)

// Interaction is one logged event.
type Interaction struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Query     string    `json:"query,omitempty"`
	URL       string    `json:"url,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Results   int       `json:"results,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrNotFound is returned when deleting an interaction that does not exist.
var ErrNotFound = errors.New("interaction not found")

// Store is the file-backed interaction log. Safe for concurrent use; the
// whole log is held in memory and rewritten on every mutation, which is
// fine at the volumes an interaction log sees.
type Store struct {
	mu         sync.Mutex
	path       string
	maxBackups int
	items      []Interaction
}

// NewStore opens (or creates) the log at cfg.Path.
func NewStore(cfg config.MemoryConfig) (*Store, error) {
	s := &Store{path: cfg.Path, maxBackups: cfg.MaxBackups}

	data, err := os.ReadFile(cfg.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Fresh log.
	case err != nil:
		return nil, fmt.Errorf("read interaction log: %w", err)
	default:
		if err := json.Unmarshal(data, &s.items); err != nil {
			// A corrupt log is not worth failing startup over; keep the
			// bytes aside and start fresh.
			slog.Warn("interaction log corrupt, starting fresh", "path", cfg.Path, "error", err)
			_ = os.Rename(cfg.Path, cfg.Path+".corrupt")
			s.items = nil
		}
	}
	return s, nil
}

// Add assigns an ID and timestamp, appends the interaction and persists.
func (s *Store) Add(item Interaction) (Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = uuid.NewString()
	item.CreatedAt = time.Now().UTC()
	s.items = append(s.items, item)
	if err := s.persist(); err != nil {
		s.items = s.items[:len(s.items)-1]
		return Interaction{}, err
	}
	return item, nil
}

// List returns interactions newest first, optionally filtered by kind and
// capped at limit (0 means no cap).
func (s *Store) List(kind string, limit int) []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Interaction, 0, len(s.items))
	for _, it := range s.items {
		if kind == "" || it.Kind == kind {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Delete removes one interaction by ID.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persist()
		}
	}
	return ErrNotFound
}

// Clear drops the whole log.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.persist()
}

// Len reports the number of logged interactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// persist writes the log atomically: temp file, backup rotation, rename.
// Callers hold the lock.
func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode interaction log: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write interaction log: %w", err)
	}

	s.rotateBackups()
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace interaction log: %w", err)
	}
	return nil
}

// rotateBackups shifts path.1 -> path.2 -> ... and snapshots the current
// file as path.1. Best-effort: a failed rotation never blocks a write.
func (s *Store) rotateBackups() {
	if s.maxBackups <= 0 {
		return
	}
	for i := s.maxBackups - 1; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", s.path, i)
		to := fmt.Sprintf("%s.%d", s.path, i+1)
		_ = os.Rename(from, to)
	}
	if _, err := os.Stat(s.path); err == nil {
		_ = os.Rename(s.path, s.path+".1")
	}
}
