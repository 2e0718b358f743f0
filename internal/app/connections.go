package app

import (
	"context"
	"sync"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Conn   core.SignalConnection
	State  domain.LifecycleState
	Cancel context.CancelFunc
}

// Connections tracks every open transport connection and its lifecycle state,
// registered or not.
type Connections struct {
	mu      sync.RWMutex
	entries map[domain.ConnHandle]*connEntry
}

func NewConnections() *Connections {
	return &Connections{entries: make(map[domain.ConnHandle]*connEntry)}
}

func (c *Connections) Add(h domain.ConnHandle, conn core.SignalConnection, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[h] = &connEntry{Conn: conn, State: domain.StateConnected, Cancel: cancel}
	log.Info().Str("module", "app.connections").Str("handle", string(h)).Msg("connected")
}

// MarkRegistered moves h to Registered. False if h is gone or closing.
func (c *Connections) MarkRegistered(h domain.ConnHandle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[h]
	if !ok || e.State == domain.StateDisconnected {
		return false
	}
	e.State = domain.StateRegistered
	return true
}

// MarkClosing moves h to Disconnected before its transport is gone. The
// entry stays so queued frames and Cancel still reach it until Remove.
func (c *Connections) MarkClosing(h domain.ConnHandle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[h]
	if !ok {
		return false
	}
	e.State = domain.StateDisconnected
	return true
}

func (c *Connections) Get(h domain.ConnHandle) (core.SignalConnection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[h]; ok {
		return e.Conn, true
	}
	return nil, false
}

func (c *Connections) State(h domain.ConnHandle) domain.LifecycleState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[h]; ok {
		return e.State
	}
	return domain.StateDisconnected
}

// Remove forgets h and returns its transport. Second call returns ok=false.
func (c *Connections) Remove(h domain.ConnHandle) (core.SignalConnection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[h]
	if !ok {
		return nil, false
	}
	e.State = domain.StateDisconnected
	delete(c.entries, h)
	log.Info().Str("module", "app.connections").Str("handle", string(h)).Msg("disconnected")
	return e.Conn, true
}

// Cancel stops the pumps of h; the read loop then runs the disconnect path.
func (c *Connections) Cancel(h domain.ConnHandle) bool {
	c.mu.RLock()
	e, ok := c.entries[h]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.connections").Str("handle", string(h)).Msg("canceled connection")
	return true
}

func (c *Connections) Handles() []domain.ConnHandle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.ConnHandle, 0, len(c.entries))
	for h := range c.entries {
		out = append(out, h)
	}
	return out
}

func (c *Connections) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
