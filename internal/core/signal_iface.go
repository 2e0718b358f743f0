package core

// Frame is a raw encoded outbound event.
type Frame []byte

// SignalConnection abstracts the signaling transport of one connection handle.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues a frame without blocking. It fails with
	// domain.ErrBackpressure when the queue is full and
	// domain.ErrConnectionClosed after Close.
	TrySend(Frame) error
	Close()
}
