package tokenstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Tokens do not survive a restart; it exists
// for tests and for callers that manage persistence themselves.
type Memory struct {
	mu   sync.RWMutex
	pair TokenPair
	set  bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context) (TokenPair, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair, m.set
}

func (m *Memory) Set(_ context.Context, pair TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = pair
	m.set = true
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = TokenPair{}
	m.set = false
	return nil
}
