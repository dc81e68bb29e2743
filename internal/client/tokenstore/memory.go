package tokenstore

import (
	"context"
	"sync"
)

// MemoryBackend holds the credential in process memory only.
type MemoryBackend struct {
	mu    sync.RWMutex
	token string
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Read(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryBackend) Write(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Clear(context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
