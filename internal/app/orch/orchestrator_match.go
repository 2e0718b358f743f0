package orch

import (
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

// FindPartner pairs user with a uniformly random idle online user.
// Fails with domain.ErrUserNotConnected or domain.ErrNoPartnerAvailable.
func (o *Orchestrator) FindPartner(user domain.UserID) (domain.Match, error) {
	o.mu.Lock()
	h, ok := o.Registry.ResolveHandle(user)
	if !ok {
		o.mu.Unlock()
		return domain.Match{}, domain.ErrUserNotConnected
	}
	if !o.Calls.IsAvailable(h) {
		// A second call would orphan the current partner.
		o.mu.Unlock()
		log.Debug().Str("module", "orch").Str("user", string(user)).Msg("requester already in a call")
		return domain.Match{}, domain.ErrNoPartnerAvailable
	}

	all := o.Registry.ListAvailable(h)
	candidates := all[:0]
	for _, c := range all {
		if o.Calls.IsAvailable(c) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		o.mu.Unlock()
		log.Debug().Str("module", "orch").Str("user", string(user)).Msg("no partner available")
		return domain.Match{}, domain.ErrNoPartnerAvailable
	}

	ph := candidates[o.Rand.Intn(len(candidates))]
	partner, _ := o.Registry.UserOf(ph)
	sid := o.NewSessionID()

	o.Calls.MarkPair(h, ph, sid)
	group := o.Groups.GetOrCreate(sid)
	for _, member := range []domain.ConnHandle{h, ph} {
		if conn, ok := o.Conns.Get(member); ok {
			group.AddMember(member, conn)
		}
	}

	// Both sides are told while mu is held: a teardown of sid can only be
	// queued after partner_found.
	var slow []domain.ConnHandle
	if _, full := o.enqueue(ph, core.PartnerFound{Type: core.EventPartnerFound, SessionID: sid, PartnerUserID: user}); full {
		slow = append(slow, ph)
	}
	if _, full := o.enqueue(h, core.PartnerFound{Type: core.EventPartnerFound, SessionID: sid, PartnerUserID: partner}); full {
		slow = append(slow, h)
	}
	o.mu.Unlock()

	log.Info().Str("module", "orch").Str("session", string(sid)).Str("user", string(user)).Str("partner", string(partner)).Msg("partner found")
	o.settle(slow)

	return domain.Match{
		Session:       sid,
		Requester:     user,
		Partner:       partner,
		RequesterConn: h,
		PartnerConn:   ph,
	}, nil
}
