package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sorsu/tiktalk/internal/core"
	"github.com/sorsu/tiktalk/internal/domain"
)

// Registry tracks every joined connection. It owns the sessions: a
// session exists from Register until Unregister and never without a
// campus. All iteration hands out snapshots so fan-out never runs
// under the lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*core.Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.SessionID]*core.Session)}
}

func (r *Registry) Register(sid core.SessionID, nickname string, campus domain.Campus, ip string, conn core.EventConn) *core.Session {
	s := &core.Session{
		SID:      sid,
		Nickname: nickname,
		Campus:   campus,
		IP:       ip,
		JoinedAt: time.Now(),
		Conn:     conn,
	}
	r.mu.Lock()
	r.sessions[sid] = s
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("nickname", nickname).Str("campus", string(campus)).Msg("session registered")
	return s
}

func (r *Registry) Lookup(sid core.SessionID) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	return s, ok
}

// Unregister removes and returns the session. Safe to call twice; the
// second call finds nothing.
func (r *Registry) Unregister(sid core.SessionID) (*core.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("session unregistered")
	return s, true
}

func (r *Registry) CountInCampus(campus domain.Campus) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.sessions {
		if s.Campus == campus {
			n++
		}
	}
	return n
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// MembersOf snapshots the live member set of a campus.
func (r *Registry) MembersOf(campus domain.Campus) []*core.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.Campus == campus {
			out = append(out, s)
		}
	}
	return out
}

// FindByNickname resolves a nickname within one campus. Nicknames are
// not unique; on collision the first live match wins.
func (r *Registry) FindByNickname(campus domain.Campus, nickname string) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.Campus == campus && s.Nickname == nickname {
			return s, true
		}
	}
	return nil, false
}

// ByIP snapshots every session originating from ip. Used when a ban is
// issued against a live address.
func (r *Registry) ByIP(ip string) []*core.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*core.Session
	for _, s := range r.sessions {
		if s.IP == ip {
			out = append(out, s)
		}
	}
	return out
}
