// pkg/config/manager.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Manager resolves configuration across layered sources with a defined
// precedence: runtime overrides > flags > environment > user file > defaults.
// The schema is closed; keys outside it are rejected with ErrUnknownKey.
type Manager struct {
	mu sync.RWMutex

	base    *koanf.Koanf // merged view of all loaded sources
	runtime *koanf.Koanf // in-memory overrides placed by Set

	// provenance holds one koanf instance per loaded source so Layer can
	// report where a resolved value came from.
	provenance []provenanceLayer

	flags    *pflag.FlagSet
	filePath string
}

type provenanceLayer struct {
	label string
	k     *koanf.Koanf
}

// NewManager creates an empty configuration manager. Load must be called
// before values can be resolved.
func NewManager() *Manager {
	return &Manager{
		base:    koanf.New("."),
		runtime: koanf.New("."),
	}
}

// Load loads configuration from the standard sources. An empty configFile
// resolves to the default user config location (~/.penkit/config.yaml).
// A config file containing keys outside the schema fails the load.
func (m *Manager) Load(flags *pflag.FlagSet, configFile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if configFile == "" {
		configFile = DefaultConfigPath()
	}
	m.filePath = configFile
	m.flags = flags

	return m.reloadLocked()
}

// Reload rebuilds the layered view from the sources configured at Load time.
// Runtime overrides survive a reload. On failure the previous view is kept.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloadLocked()
}

// LoadSources loads configuration from an explicit source list instead of
// the standard ones, for callers that insert their own Source.
func (m *Manager) LoadSources(sources []Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadSourcesLocked(sources)
}

func (m *Manager) reloadLocked() error {
	return m.loadSourcesLocked(Sources(m.filePath, m.flags))
}

func (m *Manager) loadSourcesLocked(sources []Source) error {
	sources = append([]Source(nil), sources...)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority() < sources[j].Priority()
	})

	base := koanf.New(".")
	provenance := make([]provenanceLayer, 0, len(sources))

	for _, src := range sources {
		layer := koanf.New(".")
		if err := src.Load(layer); err != nil {
			return fmt.Errorf("loading source %s: %w", src.Name(), err)
		}
		if err := base.Merge(layer); err != nil {
			return fmt.Errorf("merging source %s: %w", src.Name(), err)
		}
		provenance = append(provenance, provenanceLayer{label: src.Layer(), k: layer})
	}

	m.base = base
	m.provenance = provenance
	return nil
}

// Get resolves a key through the layers: runtime override first, then the
// merged source view. Unknown keys fail with ErrUnknownKey. The returned
// value is coerced to the schema-declared type.
func (m *Manager) Get(key string) (interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLocked(key)
}

func (m *Manager) getLocked(key string) (interface{}, error) {
	entry, ok := LookupEntry(key)
	if !ok {
		return nil, &UnknownKeyError{Key: key}
	}
	if m.runtime.Exists(key) {
		return coerceValue(entry, m.runtime.Get(key))
	}
	if m.base.Exists(key) {
		return coerceValue(entry, m.base.Get(key))
	}
	return entry.Default, nil
}

// GetString resolves a key as a string, returning the zero value on error.
func (m *Manager) GetString(key string) string {
	v, err := m.Get(key)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetBool resolves a key as a bool, returning false on error.
func (m *Manager) GetBool(key string) bool {
	v, err := m.Get(key)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

// GetInt resolves a key as an int, returning zero on error.
func (m *Manager) GetInt(key string) int {
	v, err := m.Get(key)
	if err != nil {
		return 0
	}
	n, _ := v.(int)
	return n
}

// Set type-checks value against the schema entry and stores it as a runtime
// override. Runtime overrides are in-memory only until Save is called.
func (m *Manager) Set(key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := LookupEntry(key)
	if !ok {
		return &UnknownKeyError{Key: key}
	}
	coerced, err := coerceValue(entry, value)
	if err != nil {
		return err
	}
	return m.runtime.Set(key, coerced)
}

// Layer reports which layer resolves the key: runtime, flag, env, user or
// default.
func (m *Manager) Layer(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := LookupEntry(key); !ok {
		return "", &UnknownKeyError{Key: key}
	}
	if m.runtime.Exists(key) {
		return LayerRuntime, nil
	}
	for i := len(m.provenance) - 1; i >= 0; i-- {
		if m.provenance[i].k.Exists(key) {
			return m.provenance[i].label, nil
		}
	}
	return LayerDefault, nil
}

// Resolved is one fully resolved configuration entry, for display.
type Resolved struct {
	Key   string
	Type  Type
	Value interface{}
	Layer string
}

// All returns every schema entry with its resolved value and provenance,
// in schema declaration order.
func (m *Manager) All() []Resolved {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Resolved, 0, len(schema))
	for _, e := range schema {
		value, err := m.getLocked(e.Key)
		if err != nil {
			value = e.Default
		}
		layer := LayerDefault
		if m.runtime.Exists(e.Key) {
			layer = LayerRuntime
		} else {
			for i := len(m.provenance) - 1; i >= 0; i-- {
				if m.provenance[i].k.Exists(e.Key) {
					layer = m.provenance[i].label
					break
				}
			}
		}
		out = append(out, Resolved{Key: e.Key, Type: e.Type, Value: value, Layer: layer})
	}
	return out
}

// FilePath returns the user config file path the manager was loaded with.
func (m *Manager) FilePath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filePath
}

// Save persists the runtime-override layer into the user config file,
// merging over existing file content. The write is atomic and guarded by a
// file lock against concurrent shell instances.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.filePath == "" {
		m.filePath = DefaultConfigPath()
	}

	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	lock := flock.New(m.filePath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config file: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn().Err(err).Msg("failed to release config file lock")
		}
	}()

	merged := koanf.New(".")
	if _, err := os.Stat(m.filePath); err == nil {
		if err := merged.Load(file.Provider(m.filePath), koanfyaml.Parser()); err != nil {
			return fmt.Errorf("read existing config file: %w", err)
		}
	}
	if err := merged.Load(confmap.Provider(m.runtime.All(), "."), nil); err != nil {
		return fmt.Errorf("merge runtime overrides: %w", err)
	}

	data, err := yaml.Marshal(merged.Raw())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := writeFileAtomic(m.filePath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	log.Debug().Str("path", m.filePath).Msg("configuration saved")
	return nil
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it into place, so a crash never leaves a half-written config.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	// Sync is best-effort; rename is the atomicity barrier.
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
