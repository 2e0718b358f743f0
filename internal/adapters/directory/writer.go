package directory

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type update struct {
	user   domain.UserID
	handle domain.ConnHandle
	seq    uint64
}

// Writer applies persisted-handle changes off the signaling path. Publish
// stamps each change with a process-wide sequence number, so the directory
// can discard updates that workers deliver out of order. The sequence starts
// at the boot time in nanoseconds, which keeps it increasing across restarts
// for directories that outlive the process.
type Writer struct {
	dir     core.Directory
	queue   chan update
	workers int
	timeout time.Duration
	seq     atomic.Uint64
}

func NewWriter(dir core.Directory, workers, queue int, timeout time.Duration) *Writer {
	if workers < 1 {
		workers = 1
	}
	if queue < 1 {
		queue = 1
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	w := &Writer{
		dir:     dir,
		queue:   make(chan update, queue),
		workers: workers,
		timeout: timeout,
	}
	w.seq.Store(uint64(time.Now().UnixNano()))
	return w
}

// Publish never blocks. A full queue drops the update with a warning.
func (w *Writer) Publish(user domain.UserID, h domain.ConnHandle) {
	u := update{user: user, handle: h, seq: w.seq.Add(1)}
	select {
	case w.queue <- u:
	default:
		log.Warn().Str("module", "directory").Str("user", string(user)).Msg("update queue full, dropped")
	}
}

// Run applies updates until ctx is done, then drains what is queued.
func (w *Writer) Run(ctx context.Context) error {
	var g errgroup.Group
	for i := 0; i < w.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case u := <-w.queue:
					w.apply(u)
				case <-ctx.Done():
					w.drain()
					return nil
				}
			}
		})
	}
	return g.Wait()
}

func (w *Writer) drain() {
	for {
		select {
		case u := <-w.queue:
			w.apply(u)
		default:
			return
		}
	}
}

func (w *Writer) apply(u update) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	err := w.dir.SetConnectionHandle(ctx, u.user, u.handle, u.seq)
	switch {
	case err == nil:
		log.Debug().Str("module", "directory").Str("user", string(u.user)).Str("handle", string(u.handle)).Uint64("seq", u.seq).Msg("handle persisted")
	case errors.Is(err, domain.ErrStaleUpdate):
		log.Debug().Str("module", "directory").Str("user", string(u.user)).Uint64("seq", u.seq).Msg("stale update skipped")
	default:
		log.Warn().Err(err).Str("module", "directory").Str("user", string(u.user)).Msg("directory update failed")
	}
}
