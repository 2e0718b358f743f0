package core

import "github.com/dkeye/Tandem/internal/domain"

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []domain.ConnHandle
}

// Group is the transport-level grouping of one call session, so that a
// single broadcast reaches exactly its members.
// It never closes adapter-owned resources.
type Group interface {
	Session() domain.SessionID
	MemberCount() int
	Members() []domain.ConnHandle

	AddMember(h domain.ConnHandle, conn SignalConnection)
	RemoveMember(h domain.ConnHandle)
	// Broadcast sends to every member except from; an empty from reaches all.
	Broadcast(from domain.ConnHandle, data Frame) PublishResult
}

type GroupManager interface {
	GetOrCreate(sid domain.SessionID) Group
	Get(sid domain.SessionID) (Group, bool)
	Remove(sid domain.SessionID)
	Count() int
}
