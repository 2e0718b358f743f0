package domain

import "github.com/google/uuid"

// ConnHandle identifies one live transport connection. It exists only while
// the connection is open.
type ConnHandle string

func NewConnHandle() ConnHandle { return ConnHandle(uuid.NewString()) }

func (h ConnHandle) String() string { return string(h) }

// SessionID groups the two handles of one call. Fresh per match.
type SessionID string

func NewSessionID() SessionID { return SessionID(uuid.NewString()) }

func (s SessionID) String() string { return string(s) }

// Match is the outcome of a successful pairing, seen from the requester.
type Match struct {
	Session       SessionID
	Requester     UserID
	Partner       UserID
	RequesterConn ConnHandle
	PartnerConn   ConnHandle
}

// LifecycleState of a connection handle. Disconnected is terminal.
type LifecycleState int

const (
	StateConnected LifecycleState = iota
	StateRegistered
	StateDisconnected
)

func (s LifecycleState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateRegistered:
		return "registered"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}
