package signal

import (
	"encoding/json"

	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/domain"
)

type relayPayload struct {
	Type      string          `json:"type"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	SDP       json.RawMessage `json:"sdp"`
	Candidate json.RawMessage `json:"candidate"`
}

// handleRelay forwards offer/answer/ice_candidate. SDP and candidates are
// opaque here; the server never parses them.
func (ctl *SignalWSController) handleRelay(handle domain.ConnHandle, data []byte) {
	var p relayPayload
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		ctl.sendError(handle, "bad_payload")
		return
	}
	if _, ok := ctl.Orch.Registry.UserOf(handle); !ok {
		ctl.sendError(handle, "not_registered")
		return
	}

	msg := orch.RelayMessage{
		Kind: orch.SignalKind(p.Type),
		From: domain.UserID(p.From),
		To:   domain.UserID(p.To),
	}
	if msg.Kind == orch.SignalICECandidate {
		msg.Payload = p.Candidate
	} else {
		msg.Payload = p.SDP
	}
	ctl.Orch.Relay(handle, msg)
}
