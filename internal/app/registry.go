package app

import (
	"slices"
	"sync"

	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry is the online-presence map: connection handle -> user.
// A reverse index keeps the latest handle of each user.
type Registry struct {
	mu      sync.RWMutex
	owners  map[domain.ConnHandle]domain.UserID
	handles map[domain.UserID]domain.ConnHandle
}

func NewRegistry() *Registry {
	return &Registry{
		owners:  make(map[domain.ConnHandle]domain.UserID),
		handles: make(map[domain.UserID]domain.ConnHandle),
	}
}

// Register inserts or overwrites h -> user. It reports the handle the user
// was registered under before (if different) and the user that owned h
// before (if different). The stale handle keeps its entry until the caller
// unregisters it.
func (r *Registry) Register(user domain.UserID, h domain.ConnHandle) (prevHandle domain.ConnHandle, prevOwner domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.handles[user]; ok && old != h {
		prevHandle = old
	}
	if owner, ok := r.owners[h]; ok && owner != user {
		prevOwner = owner
		if r.handles[owner] == h {
			delete(r.handles, owner)
		}
	}
	r.owners[h] = user
	r.handles[user] = h
	log.Info().Str("module", "app.registry").Str("handle", string(h)).Str("user", string(user)).Msg("registered")
	return prevHandle, prevOwner
}

// Unregister removes h. current reports whether h was the user's latest
// handle. Absent handles are a no-op.
func (r *Registry) Unregister(h domain.ConnHandle) (user domain.UserID, current bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok = r.owners[h]
	if !ok {
		return "", false, false
	}
	delete(r.owners, h)
	if r.handles[user] == h {
		delete(r.handles, user)
		current = true
	}
	log.Info().Str("module", "app.registry").Str("handle", string(h)).Str("user", string(user)).Msg("unregistered")
	return user, current, true
}

func (r *Registry) ResolveHandle(user domain.UserID) (domain.ConnHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[user]
	return h, ok
}

func (r *Registry) UserOf(h domain.ConnHandle) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.owners[h]
	return u, ok
}

// ListAvailable returns every registered handle except excluding, sorted so
// that a seeded selection is reproducible.
func (r *Registry) ListAvailable(excluding domain.ConnHandle) []domain.ConnHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ConnHandle, 0, len(r.owners))
	for h := range r.owners {
		if h != excluding {
			out = append(out, h)
		}
	}
	slices.Sort(out)
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}
