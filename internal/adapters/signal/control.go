package signal

import (
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
)

func (ctl *SignalWSController) handlePing(handle domain.ConnHandle) {
	ctl.sendJSON(handle, struct {
		Type string `json:"type"`
	}{
		Type: core.EventPong,
	})
}

func (ctl *SignalWSController) handleWhoAmI(handle domain.ConnHandle) {
	ctl.sendJSON(handle, ctl.Orch.WhoAmI(handle))
}

func (ctl *SignalWSController) sendError(handle domain.ConnHandle, msg string) {
	ctl.sendJSON(handle, core.ErrorEvent{Type: core.EventError, Error: msg})
}
