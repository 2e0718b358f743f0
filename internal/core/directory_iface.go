package core

//go:generate mockgen -source=directory_iface.go -destination=mocks/mock_directory.go -package=mocks

import (
	"context"

	"github.com/dkeye/Tandem/internal/domain"
)

// Directory is the external user directory that owns the persisted
// "current connection handle" field of each user.
type Directory interface {
	// ResolveConnectionHandle returns the persisted handle, ok=false when absent.
	ResolveConnectionHandle(ctx context.Context, user domain.UserID) (domain.ConnHandle, bool, error)
	// SetConnectionHandle stores h (empty means absent). seq is monotonic per
	// user; implementations reject seq not greater than the last applied one
	// with domain.ErrStaleUpdate.
	SetConnectionHandle(ctx context.Context, user domain.UserID, h domain.ConnHandle, seq uint64) error
}

// DirectoryUpdater publishes persisted-handle changes without blocking the caller.
type DirectoryUpdater interface {
	Publish(user domain.UserID, h domain.ConnHandle)
}

// RandSource is the injectable random source used for partner selection.
// *math/rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
}
