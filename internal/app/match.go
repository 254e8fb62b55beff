package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sorsu/tiktalk/internal/core"
)

const (
	// AnyCampusQueue is the shared cross-campus scope key; same-campus
	// scopes are keyed by the campus itself.
	AnyCampusQueue = "all"

	ScopeSameCampus = "same-campus"
	ScopeAnyCampus  = "any-campus"
)

var (
	ErrAlreadyMatched = errors.New("you are already in a match")
	ErrAlreadyQueued  = errors.New("you are already searching for a match")
	ErrNotInMatch     = errors.New("you are not in an active match")
)

// MatchEngine runs the anonymous pairing state machine. One mutex
// guards both the waiting queues and the active-pair table so a queue
// scan plus pairing is a single atomic unit: two racing joins can
// never claim the same queued entry, and no connection ends up in two
// matches or in a queue and a match at once.
type MatchEngine struct {
	mu     sync.Mutex
	queues map[string][]core.SessionID
	active map[core.SessionID]core.SessionID
	alive  func(core.SessionID) bool
}

// NewMatchEngine takes a liveness probe so queue scans can skip
// entries whose session died without a clean disconnect.
func NewMatchEngine(alive func(core.SessionID) bool) *MatchEngine {
	return &MatchEngine{
		queues: make(map[string][]core.SessionID),
		active: make(map[core.SessionID]core.SessionID),
		alive:  alive,
	}
}

// JoinResult describes the outcome of a Join: either a fresh pairing
// or a queue position.
type JoinResult struct {
	Matched       bool
	MatchID       string
	Partner       core.SessionID
	QueueKey      string
	QueuePosition int
}

// Join scans the scope's queue front-to-back for the first live
// candidate that is not the caller; on a hit both sides become an
// active pair, otherwise the caller is appended to the tail.
func (e *MatchEngine) Join(sid core.SessionID, key string) (JoinResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, matched := e.active[sid]; matched {
		return JoinResult{}, ErrAlreadyMatched
	}
	for _, queue := range e.queues {
		for _, waiting := range queue {
			if waiting == sid {
				return JoinResult{}, ErrAlreadyQueued
			}
		}
	}

	queue := e.queues[key]
	for i, waiting := range queue {
		if waiting == sid || !e.alive(waiting) {
			continue
		}
		e.queues[key] = append(queue[:i:i], queue[i+1:]...)
		e.active[sid] = waiting
		e.active[waiting] = sid
		matchID := newMatchID()
		log.Info().Str("module", "app.match").Str("sid", string(sid)).Str("partner", string(waiting)).Str("scope", key).Msg("match created")
		return JoinResult{Matched: true, MatchID: matchID, Partner: waiting, QueueKey: key}, nil
	}

	e.queues[key] = append(queue, sid)
	return JoinResult{QueueKey: key, QueuePosition: len(e.queues[key])}, nil
}

// Cancel removes the connection from whichever queue it occupies.
// Reports whether anything was removed; a no-op otherwise.
func (e *MatchEngine) Cancel(sid core.SessionID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dequeue(sid)
}

func (e *MatchEngine) dequeue(sid core.SessionID) bool {
	for key, queue := range e.queues {
		for i, waiting := range queue {
			if waiting == sid {
				e.queues[key] = append(queue[:i:i], queue[i+1:]...)
				return true
			}
		}
	}
	return false
}

func (e *MatchEngine) PartnerOf(sid core.SessionID) (core.SessionID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	partner, ok := e.active[sid]
	return partner, ok
}

// Leave destroys the caller's active pairing, returning the partner so
// the caller can notify it. Both halves of the symmetric reference go
// together.
func (e *MatchEngine) Leave(sid core.SessionID) (core.SessionID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	partner, ok := e.active[sid]
	if !ok {
		return "", false
	}
	delete(e.active, sid)
	delete(e.active, partner)
	log.Info().Str("module", "app.match").Str("sid", string(sid)).Str("partner", string(partner)).Msg("match ended")
	return partner, true
}

// Remove is the disconnect teardown: dequeue and tear down any active
// pairing in one shot. Idempotent; every sub-step tolerates finding
// nothing.
func (e *MatchEngine) Remove(sid core.SessionID) (core.SessionID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dequeue(sid)
	partner, ok := e.active[sid]
	if !ok {
		return "", false
	}
	delete(e.active, sid)
	delete(e.active, partner)
	return partner, true
}

// QueueLen reports a scope's queue length. Test hook.
func (e *MatchEngine) QueueLen(key string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queues[key])
}

func newMatchID() string {
	return fmt.Sprintf("match_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
