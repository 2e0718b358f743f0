package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"time"

	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	orch          *orch.Orchestrator
	dir           core.Directory
	iceServers    []webrtc.ICEServer
	lookupTimeout time.Duration
}

// POST /api/audio-call/start {user_id}
func (h *handlers) startCall(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	user, err := domain.NewUserID(req.UserID)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.orch.Limiter.Allow(user) {
		c.JSON(nethttp.StatusTooManyRequests, gin.H{"status": "rate_limited"})
		return
	}

	m, err := h.orch.FindPartner(user)
	switch {
	case err == nil:
		c.JSON(nethttp.StatusOK, gin.H{
			"status":          core.StatusPartnerFound,
			"session_id":      m.Session,
			"partner_user_id": m.Partner,
		})
	case errors.Is(err, domain.ErrNoPartnerAvailable):
		c.JSON(nethttp.StatusOK, gin.H{"status": core.StatusNoPartnerAvailable})
	case errors.Is(err, domain.ErrUserNotConnected):
		c.JSON(nethttp.StatusConflict, gin.H{
			"status": core.StatusUserNotConnected,
			"error":  "please register before calling",
		})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Msg("start call")
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "internal"})
	}
}

// POST /api/audio-call/end {session_id}; unknown sessions are still "ok".
func (h *handlers) endCall(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	h.orch.EndCall(domain.SessionID(req.SessionID))
	c.JSON(nethttp.StatusOK, gin.H{"status": "ok", "message": "Call ended"})
}

func (h *handlers) iceServersList(c *gin.Context) {
	c.JSON(nethttp.StatusOK, gin.H{"ice_servers": h.iceServers})
}

func (h *handlers) presence(c *gin.Context) {
	user, err := domain.NewUserID(c.Param("user_id"))
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := h.orch.Presence(user)
	resp := gin.H{
		"user_id": p.UserID,
		"online":  p.Online,
		"in_call": p.InCall,
	}
	if p.Online {
		resp["connection_handle"] = p.Handle
	}
	if p.InCall {
		resp["session_id"] = p.Session
	}

	if h.dir != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.lookupTimeout)
		defer cancel()
		persisted, ok, err := h.dir.ResolveConnectionHandle(ctx, user)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("module", "adapters.http").Str("user", string(user)).Msg("directory lookup")
		case ok:
			resp["persisted_handle"] = persisted
		}
	}
	c.JSON(nethttp.StatusOK, resp)
}

func (h *handlers) stats(c *gin.Context) {
	c.JSON(nethttp.StatusOK, h.orch.Stats())
}
