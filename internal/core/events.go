package core

import (
	"encoding/json"

	"github.com/dkeye/Tandem/internal/domain"
)

// Outbound event types.
const (
	EventRegistrationAck = "registration_ack"
	EventPartnerFound    = "partner_found"
	EventOffer           = "offer"
	EventAnswer          = "answer"
	EventICECandidate    = "ice_candidate"
	EventCallEnded       = "call_ended"
	EventEvicted         = "evicted"
	EventError           = "error"
	EventPong            = "pong"
	EventWhoAmI          = "whoami"
	EventStartCallResult = "start_call_result"
)

// Matchmaking statuses shared by the socket and HTTP triggers.
const (
	StatusPartnerFound       = "partner_found"
	StatusNoPartnerAvailable = "no_partner_available"
	StatusUserNotConnected   = "user_not_connected"
)

type RegistrationAck struct {
	Type             string            `json:"type"`
	Status           string            `json:"status"`
	UserID           domain.UserID     `json:"user_id"`
	ConnectionHandle domain.ConnHandle `json:"connection_handle"`
	Message          string            `json:"message"`
}

type PartnerFound struct {
	Type          string           `json:"type"`
	SessionID     domain.SessionID `json:"session_id"`
	PartnerUserID domain.UserID    `json:"partner_user_id"`
}

// RelayedSignal is what the target of offer/answer/ice_candidate receives.
// Payloads are forwarded verbatim.
type RelayedSignal struct {
	Type      string          `json:"type"`
	From      domain.UserID   `json:"from"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type CallEnded struct {
	Type      string           `json:"type"`
	SessionID domain.SessionID `json:"session_id"`
	Message   string           `json:"message"`
}

type Evicted struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type WhoAmI struct {
	Type             string            `json:"type"`
	State            string            `json:"state"`
	UserID           domain.UserID     `json:"user_id,omitempty"`
	ConnectionHandle domain.ConnHandle `json:"connection_handle"`
	SessionID        domain.SessionID  `json:"session_id,omitempty"`
}

type StartCallResult struct {
	Type          string           `json:"type"`
	Status        string           `json:"status"`
	SessionID     domain.SessionID `json:"session_id,omitempty"`
	PartnerUserID domain.UserID    `json:"partner_user_id,omitempty"`
}

func Encode(v any) (Frame, error) {
	return json.Marshal(v)
}
