package orch

import (
	"encoding/json"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

type SignalKind string

const (
	SignalOffer        SignalKind = core.EventOffer
	SignalAnswer       SignalKind = core.EventAnswer
	SignalICECandidate SignalKind = core.EventICECandidate
)

// RelayMessage is one inbound offer/answer/ice_candidate.
type RelayMessage struct {
	Kind    SignalKind
	From    domain.UserID
	To      domain.UserID
	Payload json.RawMessage
}

// Relay forwards msg to the current handle of msg.To. Unknown targets are
// dropped silently; the result only reports whether a frame was queued.
// Only registered senders may relay, and they are always named by their
// registered identity, whatever msg.From claims.
func (o *Orchestrator) Relay(sender domain.ConnHandle, msg RelayMessage) bool {
	from, ok := o.Registry.UserOf(sender)
	if !ok {
		log.Debug().Str("module", "orch").Str("handle", string(sender)).Str("kind", string(msg.Kind)).Msg("relay from unregistered handle, dropped")
		return false
	}
	target, ok := o.Registry.ResolveHandle(msg.To)
	if !ok {
		log.Debug().Str("module", "orch").Str("kind", string(msg.Kind)).Str("to", string(msg.To)).Msg("relay target offline, dropped")
		return false
	}

	out := core.RelayedSignal{Type: string(msg.Kind), From: from}
	switch msg.Kind {
	case SignalOffer, SignalAnswer:
		out.SDP = msg.Payload
	case SignalICECandidate:
		out.Candidate = msg.Payload
	default:
		return false
	}
	return o.notify(target, out)
}
