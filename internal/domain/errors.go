package domain

import "errors"

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")

	// ErrUserNotConnected is a client usage error: the user has no live handle.
	ErrUserNotConnected = errors.New("user not connected")
	// ErrNoPartnerAvailable is the normal "try again later" outcome of matchmaking.
	ErrNoPartnerAvailable = errors.New("no partner available")
	// ErrUnknownSession marks teardown or routing against a session that is gone.
	ErrUnknownSession = errors.New("unknown session")
	// ErrDirectoryUpdate wraps failed best-effort writes of the persisted handle.
	ErrDirectoryUpdate = errors.New("directory update failed")
	// ErrStaleUpdate is returned by directories for out-of-order writes.
	ErrStaleUpdate = errors.New("stale directory update")

	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)
