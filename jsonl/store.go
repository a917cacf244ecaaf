// Package jsonl persists chat sessions as JSONL files, one file per session.
//
// The first line of a session file is a header record; every following line
// is one message, in conversation order.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var _ nucleus.SessionStore = (*Store)(nil)

// maxLineSize is the maximum size for a single JSONL line (4MB).
// Tool-heavy replies can be long; anything beyond this is a corrupt file.
const maxLineSize = 4 * 1024 * 1024

const fileExt = ".jsonl"

// header is the first record of a session file.
type header struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists sessions under a directory.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store that keeps session files in dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load reads the session with the given id.
func (s *Store) Load(id string) (*nucleus.Session, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nucleus.ErrSessionNotFound
		}
		return nil, err
	}
	defer f.Close()

	var session *nucleus.Session
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if session == nil {
			var h header
			if err := json.Unmarshal([]byte(line), &h); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), lineNum, err)
			}
			session = &nucleus.Session{ID: h.ID, Title: h.Title, CreatedAt: h.CreatedAt, UpdatedAt: h.UpdatedAt}
			continue
		}

		var m nucleus.Message
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), lineNum, err)
		}
		session.Messages = append(session.Messages, m)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%s: missing header", filepath.Base(path))
	}

	return session, nil
}

// Save writes the session, replacing any previous version. Missing
// timestamps and title are filled in.
func (s *Store) Save(session *nucleus.Session) error {
	path, err := s.path(session.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.Title == "" {
		session.Title = nucleus.SessionTitle(session.Messages)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	// Write to a temp file in the same directory so the rename is atomic.
	tmp, err := os.CreateTemp(s.dir, "."+session.ID+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	if err := enc.Encode(header{
		ID:        session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}); err != nil {
		tmp.Close()
		return err
	}
	for _, m := range session.Messages {
		if err := enc.Encode(m); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// List returns a summary of every stored session, most recently updated first.
// Unreadable files are skipped. A missing directory yields an empty list.
func (s *Store) List() ([]nucleus.SessionSummary, error) {
	s.mu.RLock()
	entries, err := os.ReadDir(s.dir)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []nucleus.SessionSummary{}, nil
		}
		return nil, err
	}

	summaries := []nucleus.SessionSummary{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		session, err := s.Load(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		summaries = append(summaries, nucleus.SessionSummary{
			ID:           session.ID,
			Title:        session.Title,
			UpdatedAt:    session.UpdatedAt,
			MessageCount: len(session.Messages),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// path maps a session id to its file. Only UUIDs are accepted, which keeps
// ids from naming files outside the store directory.
func (s *Store) path(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: invalid id %q", nucleus.ErrSessionNotFound, id)
	}
	return filepath.Join(s.dir, u.String()+fileExt), nil
}
