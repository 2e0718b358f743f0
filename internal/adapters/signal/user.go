package signal

import (
	"encoding/json"

	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleRegister(handle domain.ConnHandle, data []byte) {
	var p struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(handle, "bad_payload")
		return
	}
	user, err := domain.NewUserID(p.UserID)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("handle", string(handle)).Msg("invalid user id")
		ctl.sendError(handle, "invalid_user_id")
		return
	}
	if err := ctl.Orch.RegisterUser(handle, user); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("handle", string(handle)).Msg("register on closed handle")
	}
}
