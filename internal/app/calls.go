package app

import (
	"slices"
	"sync"

	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

// CallTable is the occupancy map: connection handle -> session.
type CallTable struct {
	mu        sync.RWMutex
	byHandle  map[domain.ConnHandle]domain.SessionID
	bySession map[domain.SessionID]map[domain.ConnHandle]struct{}
}

func NewCallTable() *CallTable {
	return &CallTable{
		byHandle:  make(map[domain.ConnHandle]domain.SessionID),
		bySession: make(map[domain.SessionID]map[domain.ConnHandle]struct{}),
	}
}

// MarkInCall records that h is occupied by sid, moving it out of any other session.
func (t *CallTable) MarkInCall(h domain.ConnHandle, sid domain.SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markLocked(h, sid)
}

// MarkPair occupies both handles under sid in one step.
func (t *CallTable) MarkPair(a, b domain.ConnHandle, sid domain.SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markLocked(a, sid)
	t.markLocked(b, sid)
	log.Info().Str("module", "app.calls").Str("session", string(sid)).Str("a", string(a)).Str("b", string(b)).Msg("pair marked in call")
}

func (t *CallTable) markLocked(h domain.ConnHandle, sid domain.SessionID) {
	t.clearLocked(h)
	t.byHandle[h] = sid
	members, ok := t.bySession[sid]
	if !ok {
		members = make(map[domain.ConnHandle]struct{}, 2)
		t.bySession[sid] = members
	}
	members[h] = struct{}{}
}

// Clear removes occupancy for h and returns the session it was in.
func (t *CallTable) Clear(h domain.ConnHandle) (domain.SessionID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clearLocked(h)
}

func (t *CallTable) clearLocked(h domain.ConnHandle) (domain.SessionID, bool) {
	sid, ok := t.byHandle[h]
	if !ok {
		return "", false
	}
	delete(t.byHandle, h)
	if members, ok := t.bySession[sid]; ok {
		delete(members, h)
		if len(members) == 0 {
			delete(t.bySession, sid)
		}
	}
	return sid, true
}

func (t *CallTable) IsAvailable(h domain.ConnHandle) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, busy := t.byHandle[h]
	return !busy
}

func (t *CallTable) SessionOf(h domain.ConnHandle) (domain.SessionID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sid, ok := t.byHandle[h]
	return sid, ok
}

func (t *CallTable) SessionMembers(sid domain.SessionID) []domain.ConnHandle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	members := t.bySession[sid]
	out := make([]domain.ConnHandle, 0, len(members))
	for h := range members {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// Counts returns occupied handles and active sessions.
func (t *CallTable) Counts() (handles, sessions int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byHandle), len(t.bySession)
}
