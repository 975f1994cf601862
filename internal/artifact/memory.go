package artifact

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Memory keeps artifacts in memory. It is useful for tests and the memory store.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates an empty in-memory artifact store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Put stores the content of r under key.
func (m *Memory) Put(_ context.Context, key string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read artifact: %w", err)
	}
	m.mu.Lock()
	m.blobs[key] = data
	m.mu.Unlock()
	return "mem://" + key, nil
}

// Get returns a stored artifact.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	return b, ok
}
