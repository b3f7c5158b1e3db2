// pkg/session/persist.go
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/penkit-sh/penkit/pkg/toolexec"
)

const (
	metadataFile = "metadata.yaml"
	resultsDir   = "results"
	artifactsDir = "artifacts"
)

// sessionMetadata is the on-disk shape of a session minus its history.
type sessionMetadata struct {
	ID        string            `yaml:"id"`
	CreatedAt time.Time         `yaml:"created_at"`
	Vars      map[string]string `yaml:"vars,omitempty"`
}

// Store persists sessions under a root directory, one subdirectory per
// session id: metadata.yaml, results/ with one JSON file per execution, and
// artifacts/ for tool output files.
type Store struct {
	root string
}

func NewStore(root string) *Store { return &Store{root: root} }

// Root returns the sessions directory.
func (st *Store) Root() string { return st.root }

func (st *Store) sessionDir(id string) string { return filepath.Join(st.root, id) }

// Save writes the session's metadata and any history entries not yet on
// disk. The module stack is not persisted; module instances are live
// objects and a restored session starts idle.
func (st *Store) Save(s *Session) error {
	dir := st.sessionDir(s.ID)
	if err := os.MkdirAll(filepath.Join(dir, resultsDir), 0o750); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, artifactsDir), 0o750); err != nil {
		return fmt.Errorf("creating artifacts dir: %w", err)
	}

	meta := sessionMetadata{ID: s.ID, CreatedAt: s.CreatedAt, Vars: s.Vars}
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("encoding session metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), data, 0o600); err != nil {
		return fmt.Errorf("writing session metadata: %w", err)
	}

	for idx, entry := range s.history {
		name := fmt.Sprintf("%03d_%s_%d.json", idx, entry.Tool, entry.StartedAt.Unix())
		path := filepath.Join(dir, resultsDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		blob, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding execution result: %w", err)
		}
		if err := os.WriteFile(path, blob, 0o600); err != nil {
			return fmt.Errorf("writing execution result: %w", err)
		}
	}
	return nil
}

// Load restores one session from disk. History files are read in name
// order, which matches execution order.
func (st *Store) Load(id string) (*Session, error) {
	dir := st.sessionDir(id)

	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("reading session metadata: %w", err)
	}

	var meta sessionMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decoding session metadata: %w", err)
	}

	s := newSession(id)
	if !meta.CreatedAt.IsZero() {
		s.CreatedAt = meta.CreatedAt
	}
	if meta.Vars != nil {
		s.Vars = meta.Vars
	}

	entries, err := os.ReadDir(filepath.Join(dir, resultsDir))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading session results: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		blob, err := os.ReadFile(filepath.Join(dir, resultsDir, name))
		if err != nil {
			log.Warn().Str("session", id).Str("file", name).Err(err).Msg("skipping unreadable execution result")
			continue
		}
		var res toolexec.ExecutionResult
		if err := json.Unmarshal(blob, &res); err != nil {
			log.Warn().Str("session", id).Str("file", name).Err(err).Msg("skipping malformed execution result")
			continue
		}
		s.history = append(s.history, &res)
	}
	return s, nil
}

// Delete removes a session's persisted state, if any.
func (st *Store) Delete(id string) error {
	return os.RemoveAll(st.sessionDir(id))
}

// Restore loads every persisted session into the manager and returns how
// many were restored. Malformed session directories are skipped and logged,
// never fatal.
func (st *Store) Restore(m *Manager) int {
	entries, err := os.ReadDir(st.root)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Str("dir", st.root).Err(err).Msg("cannot read sessions directory")
		}
		return 0
	}

	restored := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		s, err := st.Load(e.Name())
		if err != nil {
			log.Warn().Str("session", e.Name()).Err(err).Msg("skipping unloadable session")
			continue
		}
		m.adopt(s)
		restored++
	}
	return restored
}

// SaveAll persists every session in the manager, continuing past individual
// failures and returning the first one.
func (st *Store) SaveAll(m *Manager) error {
	var firstErr error
	for _, s := range m.List() {
		if err := st.Save(s); err != nil {
			log.Error().Str("session", s.ID).Err(err).Msg("failed to save session")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
