package core

import (
	"sync"

	"github.com/dkeye/Tandem/internal/domain"
)

type GroupManagerImpl struct {
	mu     sync.RWMutex
	groups map[domain.SessionID]Group
}

func NewGroupManager() GroupManager {
	return &GroupManagerImpl{groups: make(map[domain.SessionID]Group)}
}

func (m *GroupManagerImpl) GetOrCreate(sid domain.SessionID) Group {
	m.mu.RLock()
	g, ok := m.groups[sid]
	m.mu.RUnlock()
	if ok {
		return g
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok = m.groups[sid]; ok {
		return g
	}
	g = NewGroup(sid)
	m.groups[sid] = g
	return g
}

func (m *GroupManagerImpl) Get(sid domain.SessionID) (Group, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[sid]
	return g, ok
}

func (m *GroupManagerImpl) Remove(sid domain.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, sid)
}

func (m *GroupManagerImpl) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.groups)
}
