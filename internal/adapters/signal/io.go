package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Tandem/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// writePump owns every write on the socket. On cancel it flushes what is
// already queued, says goodbye and closes the connection, which in turn
// ends the read pump.
func (ctl *SignalWSController) writePump(ctx context.Context, handle domain.ConnHandle, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("handle", string(handle)).Msg("writePump ctx done")
			ctl.flush(c)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(ctl.Opts.WriteWait))
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := ctl.write(c, websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("handle", string(handle)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := ctl.write(c, websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("handle", string(handle)).Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) write(c *WsSignalConn, kind int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Opts.WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(kind, data)
}

func (ctl *SignalWSController) flush(c *WsSignalConn) {
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := ctl.write(c, websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

// readPump reads until the socket fails, then runs the disconnect path.
func (ctl *SignalWSController) readPump(handle domain.ConnHandle, c *WsSignalConn, cancel context.CancelFunc) {
	defer func() {
		log.Info().Str("module", "signal").Str("handle", string(handle)).Msg("readPump closing")
		cancel()
		ctl.Orch.Disconnect(handle)
	}()

	c.conn.SetReadLimit(ctl.Opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.Opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.Opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "signal").Str("handle", string(handle)).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(handle, data)
	}
}

func (ctl *SignalWSController) handleSignal(handle domain.ConnHandle, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("handle", string(handle)).Msg("bad json")
		ctl.sendError(handle, "bad_json")
		return
	}

	switch env.Type {
	case "register":
		ctl.handleRegister(handle, data)
	case "offer", "answer", "ice_candidate":
		ctl.handleRelay(handle, data)
	case "start_call":
		ctl.handleStartCall(handle)
	case "end_call":
		ctl.handleEndCall(handle, data)
	case "ping":
		ctl.handlePing(handle)
	case "whoami":
		ctl.handleWhoAmI(handle)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(handle, "unknown_type")
	}
}

func (ctl *SignalWSController) sendJSON(handle domain.ConnHandle, v any) {
	ctl.Orch.Notify(handle, v)
}
