// Package app is the in-memory realtime engine: session registry,
// campus rooms, direct messages, mentions, and the match system, tied
// together by the Orchestrator. No package-level state; every test
// builds its own instance.
package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/sorsu/tiktalk/internal/core"
	"github.com/sorsu/tiktalk/internal/domain"
	"github.com/sorsu/tiktalk/internal/moderation"
)

// User-facing operation errors. The text crosses the wire verbatim in
// error events, hence the prose casing.
var (
	ErrNotJoined      = errors.New("Not authenticated")
	ErrAlreadyJoined  = errors.New("Already joined")
	ErrInvalidCampus  = errors.New("Invalid campus selection")
	ErrEmptyContent   = errors.New("Message content required")
	ErrMessageTooLong = errors.New("Message too long (max 500 characters)")
	ErrProfanity      = errors.New("Message contains inappropriate content")
	ErrRecipientGone  = errors.New("Recipient not found or offline")
	ErrUserGone       = errors.New("User not found or offline")
)

// Orchestrator composes the engine structures and owns every
// event-level operation. It emits outward through session EventConns;
// fan-out always walks a membership snapshot, never the registry lock.
type Orchestrator struct {
	Registry *Registry
	Rooms    *Rooms
	Mentions *Mentions
	DMs      *DMCounters
	Matches  *MatchEngine
	Gate     *moderation.Gate
}

func NewOrchestrator(gate *moderation.Gate) *Orchestrator {
	o := &Orchestrator{
		Registry: NewRegistry(),
		Rooms:    NewRooms(),
		Mentions: NewMentions(),
		DMs:      NewDMCounters(),
		Gate:     gate,
	}
	o.Matches = NewMatchEngine(func(sid core.SessionID) bool {
		_, ok := o.Registry.Lookup(sid)
		return ok
	})
	return o
}

func emit(conn core.EventConn, typ string, data any) {
	_ = conn.TrySend(core.Event{Type: typ, Data: data})
}

// broadcast delivers an event to every current member of a campus,
// minus any excluded connections. Delivery is fire-and-forget against
// the snapshot taken here.
func (o *Orchestrator) broadcast(campus domain.Campus, typ string, data any, except ...core.SessionID) {
	members := o.Registry.MembersOf(campus)
	for _, s := range members {
		skip := false
		for _, ex := range except {
			if s.SID == ex {
				skip = true
				break
			}
		}
		if !skip {
			emit(s.Conn, typ, data)
		}
	}
}

// Join admits a connection into a campus: validates, registers, sends
// the history snapshot, and announces the fresh online count.
func (o *Orchestrator) Join(sid core.SessionID, conn core.EventConn, ip, rawNickname, rawCampus string) error {
	if _, joined := o.Registry.Lookup(sid); joined {
		return ErrAlreadyJoined
	}
	nickname, err := domain.NormalizeNickname(rawNickname)
	if err != nil {
		return err
	}
	campus, ok := domain.ParseCampus(rawCampus)
	if !ok {
		return ErrInvalidCampus
	}

	o.Registry.Register(sid, nickname, campus, ip, conn)
	emit(conn, core.EvHistory, o.Rooms.History(campus))
	o.broadcast(campus, core.EvJoined, core.JoinedPayload{
		Nickname:    nickname,
		Campus:      campus,
		OnlineCount: o.Registry.CountInCampus(campus),
	})
	log.Info().Str("module", "app.orch").Str("nickname", nickname).Str("campus", string(campus)).Msg("user joined")
	return nil
}

// Disconnect is the single teardown path for a dead connection. Every
// sub-step tolerates finding nothing, so running it twice is safe.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	s, wasJoined := o.Registry.Unregister(sid)

	if partner, hadMatch := o.Matches.Remove(sid); hadMatch {
		if ps, ok := o.Registry.Lookup(partner); ok {
			emit(ps.Conn, core.EvPartnerLeft, nil)
		}
	}
	o.Mentions.Forget(sid)
	o.DMs.Forget(sid)

	if wasJoined {
		o.broadcast(s.Campus, core.EvLeft, core.LeftPayload{
			Nickname:    s.Nickname,
			OnlineCount: o.Registry.CountInCampus(s.Campus),
		})
		log.Info().Str("module", "app.orch").Str("nickname", s.Nickname).Msg("user disconnected")
	}
}

// ListUsers returns the caller's campus roster, excluding the caller.
func (o *Orchestrator) ListUsers(sid core.SessionID) ([]core.OnlineUser, error) {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return nil, ErrNotJoined
	}
	members := o.Registry.MembersOf(s.Campus)
	users := make([]core.OnlineUser, 0, len(members))
	for _, m := range members {
		if m.SID == sid {
			continue
		}
		users = append(users, core.OnlineUser{Nickname: m.Nickname, Campus: m.Campus})
	}
	return users, nil
}

// Stats aggregates counters for the admin control plane.
type Stats struct {
	OnlineUsers      int                   `json:"onlineUsers"`
	MessagesByCampus map[domain.Campus]int `json:"messagesByCampus"`
}

func (o *Orchestrator) Stats() Stats {
	return Stats{
		OnlineUsers:      o.Registry.Size(),
		MessagesByCampus: o.Rooms.Sizes(),
	}
}
