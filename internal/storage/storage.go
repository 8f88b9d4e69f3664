// Package storage provides the persisted key-value store shared by the host
// components.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Well-known keys.
const (
	KeyOpenAtLogin               = "openAtLogin"
	KeyMinimizeOnCopyToClipboard = "minimizeOnCopyToClipboard"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// ErrNotFound is returned by Get when the key has never been saved.
var ErrNotFound = errors.New("storage: key not found")

// Store persists JSON-encodable values by key.
type Store interface {
	Get(key string, out any) error
	Save(key string, value any) error
	Keys() ([]string, error)
	Close() error
}

// Options selects and configures a Store implementation.
type Options struct {
	Backend    string
	Path       string
	Passphrase string
}

// Open constructs the store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return OpenFile(opts.Path, opts.Passphrase)
	case BackendBadger:
		return OpenBadger(opts.Path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", opts.Backend)
	}
}

// GetBool reads a boolean flag, reporting false for keys never saved.
func GetBool(s Store, key string) (bool, error) {
	var value bool
	if err := s.Get(key, &value); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return value, nil
}

// Memory is an in-process Store used for tests and the memory backend.
type Memory struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
	writes int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]json.RawMessage)}
}

func (m *Memory) Get(key string, out any) error {
	m.mu.RLock()
	raw, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (m *Memory) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	m.values[key] = raw
	m.writes++
	m.mu.Unlock()
	return nil
}

func (m *Memory) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.values), nil
}

// Writes reports how many Save calls succeeded.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *Memory) Close() error { return nil }

func sortedKeys(values map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
