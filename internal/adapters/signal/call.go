package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleStartCall runs matchmaking for the user registered on handle.
// partner_found reaches both sides from the orchestrator; the requester also
// gets a start_call_result.
func (ctl *SignalWSController) handleStartCall(handle domain.ConnHandle) {
	user, ok := ctl.Orch.Registry.UserOf(handle)
	if !ok {
		ctl.sendError(handle, "not_registered")
		return
	}
	if !ctl.Orch.Limiter.Allow(user) {
		ctl.sendError(handle, "rate_limited")
		return
	}

	resp := core.StartCallResult{Type: core.EventStartCallResult}
	m, err := ctl.Orch.FindPartner(user)
	switch {
	case err == nil:
		resp.Status = core.StatusPartnerFound
		resp.SessionID = m.Session
		resp.PartnerUserID = m.Partner
	case errors.Is(err, domain.ErrNoPartnerAvailable):
		resp.Status = core.StatusNoPartnerAvailable
	case errors.Is(err, domain.ErrUserNotConnected):
		resp.Status = core.StatusUserNotConnected
	default:
		log.Error().Err(err).Str("module", "signal").Msg("start_call")
		ctl.sendError(handle, "internal")
		return
	}
	ctl.sendJSON(handle, resp)
}

func (ctl *SignalWSController) handleEndCall(handle domain.ConnHandle, data []byte) {
	var p struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(handle, "bad_payload")
		return
	}
	if _, ok := ctl.Orch.Registry.UserOf(handle); !ok {
		ctl.sendError(handle, "not_registered")
		return
	}
	// Sessions the socket is not part of are ignored like unknown ones.
	ctl.Orch.EndCallFrom(handle, domain.SessionID(p.SessionID))
}
