package core

import (
	"sync"

	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

// groupImpl is a threadsafe in-memory session group.
type groupImpl struct {
	sid      domain.SessionID
	mu       sync.RWMutex
	byHandle map[domain.ConnHandle]SignalConnection
}

func NewGroup(sid domain.SessionID) Group {
	return &groupImpl{
		sid:      sid,
		byHandle: make(map[domain.ConnHandle]SignalConnection),
	}
}

func (g *groupImpl) Session() domain.SessionID { return g.sid }

func (g *groupImpl) MemberCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byHandle)
}

func (g *groupImpl) Members() []domain.ConnHandle {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.ConnHandle, 0, len(g.byHandle))
	for h := range g.byHandle {
		out = append(out, h)
	}
	return out
}

func (g *groupImpl) AddMember(h domain.ConnHandle, conn SignalConnection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.byHandle[h] = conn
	log.Debug().Str("module", "core.group").Str("session", string(g.sid)).Str("handle", string(h)).Msg("member joined")
}

func (g *groupImpl) RemoveMember(h domain.ConnHandle) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.byHandle, h)
	log.Debug().Str("module", "core.group").Str("session", string(g.sid)).Str("handle", string(h)).Msg("member left")
}

func (g *groupImpl) Broadcast(from domain.ConnHandle, data Frame) PublishResult {
	g.mu.RLock()
	defer g.mu.RUnlock()
	res := PublishResult{}
	for h, conn := range g.byHandle {
		if from != "" && h == from {
			continue
		}
		if err := conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, h)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.group").Str("session", string(g.sid)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
