package app

import (
	"time"

	"github.com/sorsu/tiktalk/internal/core"
	"github.com/sorsu/tiktalk/internal/domain"
)

// MatchJoin enters the anonymous matchmaking flow. Scope "same-campus"
// queues against the caller's campus, anything else against the shared
// cross-campus queue. The found event carries only the partner's
// campus, never a nickname.
func (o *Orchestrator) MatchJoin(sid core.SessionID, scope string) error {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return ErrNotJoined
	}
	key := AnyCampusQueue
	if scope == ScopeSameCampus {
		key = string(s.Campus)
	}

	res, err := o.Matches.Join(sid, key)
	if err != nil {
		return err
	}
	if !res.Matched {
		emit(s.Conn, core.EvMatchSearch, core.MatchSearchPayload{
			QueuePosition: res.QueuePosition,
			MatchType:     res.QueueKey,
		})
		return nil
	}

	partner, ok := o.Registry.Lookup(res.Partner)
	if !ok {
		// Partner died between pairing and notification. Undo and rejoin:
		// the dead entry was consumed from the queue, so the retry either
		// pairs with a live candidate or queues the caller.
		o.Matches.Leave(sid)
		return o.MatchJoin(sid, scope)
	}
	now := time.Now()
	emit(s.Conn, core.EvMatchFound, core.MatchFoundPayload{
		MatchID:       res.MatchID,
		PartnerCampus: partner.Campus,
		Timestamp:     now,
	})
	emit(partner.Conn, core.EvMatchFound, core.MatchFoundPayload{
		MatchID:       res.MatchID,
		PartnerCampus: s.Campus,
		Timestamp:     now,
	})
	return nil
}

// MatchCancel drops the caller out of the queue, if queued.
func (o *Orchestrator) MatchCancel(sid core.SessionID) {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	if o.Matches.Cancel(sid) {
		emit(s.Conn, core.EvMatchCancel, nil)
	}
}

// MatchMessage delivers to the partner only, tagged so each side can
// tell own from partner messages. Same content gate as room messages.
func (o *Orchestrator) MatchMessage(sid core.SessionID, rawContent string) error {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return ErrNotJoined
	}
	partnerSID, matched := o.Matches.PartnerOf(sid)
	if !matched {
		return ErrNotInMatch
	}
	content, err := checkContent(rawContent)
	if err != nil {
		return err
	}

	payload := core.MatchMessagePayload{
		ID:        domain.NewMessageID(),
		Content:   content,
		Timestamp: time.Now(),
	}
	own := payload
	own.IsOwn = true
	emit(s.Conn, core.EvMatchMessage, own)
	if partner, ok := o.Registry.Lookup(partnerSID); ok {
		emit(partner.Conn, core.EvMatchMessage, payload)
	}
	return nil
}

// MatchTyping relays a typing flag to the partner. No state, no errors.
func (o *Orchestrator) MatchTyping(sid core.SessionID, typing bool) {
	partnerSID, matched := o.Matches.PartnerOf(sid)
	if !matched {
		return
	}
	if partner, ok := o.Registry.Lookup(partnerSID); ok {
		emit(partner.Conn, core.EvMatchTyping, core.MatchTypingPayload{Typing: typing})
	}
}

// MatchLeave ends an active match from the caller's side; a queued
// caller is cancelled instead.
func (o *Orchestrator) MatchLeave(sid core.SessionID) {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	partnerSID, wasMatched := o.Matches.Leave(sid)
	if !wasMatched {
		o.MatchCancel(sid)
		return
	}
	if partner, ok := o.Registry.Lookup(partnerSID); ok {
		emit(partner.Conn, core.EvPartnerLeft, nil)
	}
	emit(s.Conn, core.EvMatchLeft, nil)
}
