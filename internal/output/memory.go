package output

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
)

// MemorySink keeps artifacts in memory. Safe for concurrent use.
type MemorySink struct {
	mu    sync.RWMutex
	items map[string][]byte
}

var _ Sink = (*MemorySink)(nil)

func NewMemorySink() *MemorySink {
	return &MemorySink{items: make(map[string][]byte)}
}

func (m *MemorySink) Put(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[name] = data
	return name, nil
}

// Get returns the stored bytes of name.
func (m *MemorySink) Get(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[name]
	return data, ok
}

// Names returns the stored artifact names, sorted.
func (m *MemorySink) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.items))
}
