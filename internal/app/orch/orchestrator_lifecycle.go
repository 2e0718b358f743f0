package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

// Connect puts a fresh handle in the Connected (unregistered) state.
func (o *Orchestrator) Connect(h domain.ConnHandle, conn core.SignalConnection, cancel context.CancelFunc) {
	o.Conns.Add(h, conn, cancel)
}

// RegisterUser binds user to h, evicting any older handle of the same user,
// persists the handle and acknowledges on h.
func (o *Orchestrator) RegisterUser(h domain.ConnHandle, user domain.UserID) error {
	var slow []domain.ConnHandle

	o.mu.Lock()
	if !o.Conns.MarkRegistered(h) {
		o.mu.Unlock()
		return domain.ErrConnectionClosed
	}
	prevHandle, prevOwner := o.Registry.Register(user, h)

	if prevHandle != "" {
		o.Registry.Unregister(prevHandle)
		if sid, ok := o.Calls.SessionOf(prevHandle); ok {
			slow = append(slow, o.announceEndedLocked(o.endSessionLocked(sid, prevHandle))...)
		}
		// An evicted handle must not register again while its pumps wind down.
		o.Conns.MarkClosing(prevHandle)
		log.Info().Str("module", "orch").Str("user", string(user)).Str("old_handle", string(prevHandle)).Str("handle", string(h)).Msg("evicting previous handle")
		o.enqueue(prevHandle, core.Evicted{Type: core.EventEvicted, Message: "registered from another connection"})
	}
	if prevOwner != "" {
		// The partner knows this handle by its old identity.
		if sid, ok := o.Calls.SessionOf(h); ok {
			slow = append(slow, o.announceEndedLocked(o.endSessionLocked(sid, ""))...)
		}
		o.Directory.Publish(prevOwner, "")
	}
	o.Directory.Publish(user, h)

	_, full := o.enqueue(h, core.RegistrationAck{
		Type:             core.EventRegistrationAck,
		Status:           "OK",
		UserID:           user,
		ConnectionHandle: h,
		Message:          fmt.Sprintf("Successfully registered user %s", user),
	})
	if full {
		slow = append(slow, h)
	}
	o.mu.Unlock()

	if prevHandle != "" {
		o.Conns.Cancel(prevHandle)
	}
	o.settle(slow)
	return nil
}

// Disconnect is the only cancellation signal of the core. It is idempotent
// and valid from any state.
func (o *Orchestrator) Disconnect(h domain.ConnHandle) {
	var slow []domain.ConnHandle

	o.mu.Lock()
	o.Conns.Remove(h)
	user, current, online := o.Registry.Unregister(h)
	sid, inCall := o.Calls.SessionOf(h)
	if inCall {
		slow = o.announceEndedLocked(o.endSessionLocked(sid, h))
	}
	if online && current {
		o.Directory.Publish(user, "")
	}
	o.mu.Unlock()

	o.settle(slow)
	if online && current {
		o.Limiter.Forget(user)
	}
	log.Info().Str("module", "orch").Str("handle", string(h)).Str("user", string(user)).Bool("in_call", inCall).Msg("disconnect handled")
}

// WhoAmI reports what the core knows about h.
func (o *Orchestrator) WhoAmI(h domain.ConnHandle) core.WhoAmI {
	resp := core.WhoAmI{
		Type:             core.EventWhoAmI,
		State:            o.Conns.State(h).String(),
		ConnectionHandle: h,
	}
	if u, ok := o.Registry.UserOf(h); ok {
		resp.UserID = u
	}
	if sid, ok := o.Calls.SessionOf(h); ok {
		resp.SessionID = sid
	}
	return resp
}

type Presence struct {
	UserID  domain.UserID     `json:"user_id"`
	Online  bool              `json:"online"`
	Handle  domain.ConnHandle `json:"connection_handle,omitempty"`
	InCall  bool              `json:"in_call"`
	Session domain.SessionID  `json:"session_id,omitempty"`
}

func (o *Orchestrator) Presence(user domain.UserID) Presence {
	p := Presence{UserID: user}
	h, ok := o.Registry.ResolveHandle(user)
	if !ok {
		return p
	}
	p.Online = true
	p.Handle = h
	if sid, ok := o.Calls.SessionOf(h); ok {
		p.InCall = true
		p.Session = sid
	}
	return p
}
