package orch

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/dkeye/Tandem/internal/app"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator owns the signaling core: lifecycle, matchmaking, relay and
// teardown. Every compound read-then-write over Registry, Calls and Groups
// runs under mu, so two matchmaking calls can never pick the same idle
// handle. Notifications are sent after mu is released.
type Orchestrator struct {
	mu sync.Mutex

	Conns     *app.Connections
	Registry  *app.Registry
	Calls     *app.CallTable
	Groups    core.GroupManager
	Policy    app.Policy
	Directory core.DirectoryUpdater
	Limiter   *app.MatchLimiter

	// Rand is only used under mu.
	Rand         core.RandSource
	NewSessionID func() domain.SessionID
}

// New wires an Orchestrator with empty tables. A nil rnd gets a time-seeded source.
func New(dir core.DirectoryUpdater, rnd core.RandSource, policy app.Policy, limiter *app.MatchLimiter) *Orchestrator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if policy == nil {
		policy = app.SimplePolicy{}
	}
	if dir == nil {
		dir = nopDirectory{}
	}
	return &Orchestrator{
		Conns:        app.NewConnections(),
		Registry:     app.NewRegistry(),
		Calls:        app.NewCallTable(),
		Groups:       core.NewGroupManager(),
		Policy:       policy,
		Directory:    dir,
		Limiter:      limiter,
		Rand:         rnd,
		NewSessionID: domain.NewSessionID,
	}
}

type nopDirectory struct{}

func (nopDirectory) Publish(domain.UserID, domain.ConnHandle) {}

// notify encodes v and queues it on h. Unknown handles are skipped.
func (o *Orchestrator) notify(h domain.ConnHandle, v any) bool {
	queued, slow := o.enqueue(h, v)
	if slow {
		o.onBackpressure(h)
	}
	return queued
}

// enqueue hands v to the transport of h without acting on back-pressure, so
// it is safe under mu. slow reports a full queue; the caller settles it once
// mu is released.
func (o *Orchestrator) enqueue(h domain.ConnHandle, v any) (queued, slow bool) {
	conn, ok := o.Conns.Get(h)
	if !ok {
		return false, false
	}
	frame, err := core.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode event")
		return false, false
	}
	if err := conn.TrySend(frame); err != nil {
		return false, errors.Is(err, domain.ErrBackpressure)
	}
	return true, false
}

func (o *Orchestrator) settle(slow []domain.ConnHandle) {
	for _, h := range slow {
		o.onBackpressure(h)
	}
}

// Notify is the adapter-facing variant of notify, used for acks and replies.
func (o *Orchestrator) Notify(h domain.ConnHandle, v any) bool {
	return o.notify(h, v)
}

func (o *Orchestrator) onBackpressure(h domain.ConnHandle) {
	switch o.Policy.OnBackPressure(h) {
	case app.KickConnection:
		log.Warn().Str("module", "orch").Str("handle", string(h)).Msg("slow connection, kicking")
		o.Conns.Cancel(h)
	case app.DropFrame, app.NoAction:
		log.Debug().Str("module", "orch").Str("handle", string(h)).Msg("slow connection, frame dropped")
	}
}

type Stats struct {
	Connections int `json:"connections"`
	Online      int `json:"online"`
	InCall      int `json:"in_call"`
	Sessions    int `json:"sessions"`
}

func (o *Orchestrator) Stats() Stats {
	inCall, sessions := o.Calls.Counts()
	return Stats{
		Connections: o.Conns.Count(),
		Online:      o.Registry.Count(),
		InCall:      inCall,
		Sessions:    sessions,
	}
}

// CloseAll cancels every open connection; each then runs the disconnect path.
func (o *Orchestrator) CloseAll() {
	for _, h := range o.Conns.Handles() {
		o.Conns.Cancel(h)
	}
}
