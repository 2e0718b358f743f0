package orch

import (
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

const callEndedMessage = "Call has been ended"

type endedSession struct {
	sid     domain.SessionID
	members []domain.ConnHandle
	group   core.Group
	skip    domain.ConnHandle
}

// EndCall tears sid down and tells every member. Unknown or already ended
// sessions are a no-op and report false.
func (o *Orchestrator) EndCall(sid domain.SessionID) bool {
	o.mu.Lock()
	e := o.endSessionLocked(sid, "")
	slow := o.announceEndedLocked(e)
	o.mu.Unlock()

	o.settle(slow)
	if len(e.members) == 0 {
		log.Debug().Err(domain.ErrUnknownSession).Str("module", "orch").Str("session", string(sid)).Msg("end call ignored")
		return false
	}
	return true
}

// EndCallFrom is EndCall on behalf of a connection: only a member of sid may
// end it. Anything else is ignored like an unknown session.
func (o *Orchestrator) EndCallFrom(h domain.ConnHandle, sid domain.SessionID) bool {
	o.mu.Lock()
	if cur, ok := o.Calls.SessionOf(h); !ok || cur != sid {
		o.mu.Unlock()
		log.Debug().Err(domain.ErrUnknownSession).Str("module", "orch").Str("handle", string(h)).Str("session", string(sid)).Msg("end call from non-member ignored")
		return false
	}
	e := o.endSessionLocked(sid, "")
	slow := o.announceEndedLocked(e)
	o.mu.Unlock()

	o.settle(slow)
	return true
}

// endSessionLocked clears every member of sid from the call table and drops
// the session group. skip names a member that must not be notified.
func (o *Orchestrator) endSessionLocked(sid domain.SessionID, skip domain.ConnHandle) endedSession {
	e := endedSession{sid: sid, skip: skip, members: o.Calls.SessionMembers(sid)}
	for _, h := range e.members {
		o.Calls.Clear(h)
	}
	if g, ok := o.Groups.Get(sid); ok {
		if skip != "" {
			g.RemoveMember(skip)
		}
		e.group = g
		o.Groups.Remove(sid)
	}
	return e
}

// announceEndedLocked queues call_ended on every remaining member while mu
// is held, so no later event for those handles can overtake it. It returns
// the members whose queue was full.
func (o *Orchestrator) announceEndedLocked(e endedSession) []domain.ConnHandle {
	if len(e.members) == 0 {
		return nil
	}
	ev := core.CallEnded{Type: core.EventCallEnded, SessionID: e.sid, Message: callEndedMessage}
	log.Info().Str("module", "orch").Str("session", string(e.sid)).Int("members", len(e.members)).Msg("call ended")

	if e.group == nil {
		var slow []domain.ConnHandle
		for _, h := range e.members {
			if h == e.skip {
				continue
			}
			if _, full := o.enqueue(h, ev); full {
				slow = append(slow, h)
			}
		}
		return slow
	}
	frame, err := core.Encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode call_ended")
		return nil
	}
	return e.group.Broadcast("", frame).Dropped
}
