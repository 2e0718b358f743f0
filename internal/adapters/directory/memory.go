package directory

import (
	"context"
	"sync"

	"github.com/dkeye/Tandem/internal/domain"
)

type memEntry struct {
	handle domain.ConnHandle
	seq    uint64
}

// Memory is an in-process user directory. Used in dev mode and tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[domain.UserID]memEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[domain.UserID]memEntry)}
}

func (m *Memory) ResolveConnectionHandle(_ context.Context, user domain.UserID) (domain.ConnHandle, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e := m.entries[user]
	return e.handle, e.handle != "", nil
}

func (m *Memory) SetConnectionHandle(_ context.Context, user domain.UserID, h domain.ConnHandle, seq uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[user]; ok && seq <= e.seq {
		return domain.ErrStaleUpdate
	}
	m.entries[user] = memEntry{handle: h, seq: seq}
	return nil
}
