package app

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sorsu/tiktalk/internal/domain"
)

// MaxMessagesPerCampus bounds each campus log; the oldest message is
// evicted first.
const MaxMessagesPerCampus = 100

var (
	ErrMessageNotFound   = errors.New("message not found or not yours")
	ErrEditWindowExpired = errors.New("can only edit messages within 5 minutes")
)

// roomLog is one campus's bounded, ordered message log. Mutation is in
// place under the room's own lock; eviction is strictly FIFO.
type roomLog struct {
	mu       sync.Mutex
	messages []*domain.Message
}

// Rooms holds the four fixed campus logs. The map is built once and
// never mutated, so lookups need no outer lock.
type Rooms struct {
	logs map[domain.Campus]*roomLog
}

func NewRooms() *Rooms {
	logs := make(map[domain.Campus]*roomLog, len(domain.Campuses()))
	for _, c := range domain.Campuses() {
		logs[c] = &roomLog{}
	}
	return &Rooms{logs: logs}
}

// Append stores a message and evicts the oldest entry once the log
// exceeds the cap. Returns a wire-safe snapshot.
func (r *Rooms) Append(msg *domain.Message) domain.MessageView {
	rl := r.logs[msg.Campus]
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.messages = append(rl.messages, msg)
	if len(rl.messages) > MaxMessagesPerCampus {
		rl.messages = rl.messages[1:]
	}
	return msg.View()
}

// History snapshots a campus log in order.
func (r *Rooms) History(campus domain.Campus) []domain.MessageView {
	rl := r.logs[campus]
	rl.mu.Lock()
	defer rl.mu.Unlock()
	out := make([]domain.MessageView, 0, len(rl.messages))
	for _, m := range rl.messages {
		out = append(out, m.View())
	}
	return out
}

func (r *Rooms) Len(campus domain.Campus) int {
	rl := r.logs[campus]
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.messages)
}

// findOwned locates a live (non-deleted) message by id owned by the
// given connection. Must be called under the room lock.
func (rl *roomLog) findOwned(id, authorSID string) *domain.Message {
	for _, m := range rl.messages {
		if m.ID == id && m.AuthorSID == authorSID {
			return m
		}
	}
	return nil
}

// Edit mutates a message's content. Only the authoring connection may
// edit, only within the edit window, and never after deletion.
func (r *Rooms) Edit(campus domain.Campus, id, authorSID, content string) (domain.MessageView, error) {
	rl := r.logs[campus]
	rl.mu.Lock()
	defer rl.mu.Unlock()
	m := rl.findOwned(id, authorSID)
	if m == nil || m.Deleted {
		return domain.MessageView{}, ErrMessageNotFound
	}
	if time.Since(m.Timestamp) > domain.EditWindow {
		return domain.MessageView{}, ErrEditWindowExpired
	}
	now := time.Now()
	m.Content = content
	m.Edited = true
	m.EditedAt = &now
	return m.View(), nil
}

// Delete is terminal and idempotent in effect: the content becomes the
// placeholder and stays there; a second delete changes nothing.
func (r *Rooms) Delete(campus domain.Campus, id, authorSID string) error {
	rl := r.logs[campus]
	rl.mu.Lock()
	defer rl.mu.Unlock()
	m := rl.findOwned(id, authorSID)
	if m == nil {
		return ErrMessageNotFound
	}
	if !m.Deleted {
		now := time.Now()
		m.Deleted = true
		m.DeletedAt = &now
		m.Content = domain.DeletedPlaceholder
		log.Info().Str("module", "app.rooms").Str("campus", string(campus)).Str("id", id).Msg("message deleted")
	}
	return nil
}

// ToggleReaction flips one connection's reaction on a message and
// returns the emoji -> count projection. A missing, evicted or deleted
// message reports ok=false and the caller stays silent.
func (r *Rooms) ToggleReaction(campus domain.Campus, id, emoji, sid string) (map[string]int, bool) {
	rl := r.logs[campus]
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for _, m := range rl.messages {
		if m.ID != id {
			continue
		}
		if m.Deleted {
			return nil, false
		}
		who, ok := m.Reactions[emoji]
		if !ok {
			who = make(map[string]struct{})
			m.Reactions[emoji] = who
		}
		if _, reacted := who[sid]; reacted {
			delete(who, sid)
			if len(who) == 0 {
				delete(m.Reactions, emoji)
			}
		} else {
			who[sid] = struct{}{}
		}
		return m.ReactionCounts(), true
	}
	return nil, false
}

// AuthorOf reports the authoring connection of a message, for report
// target resolution.
func (r *Rooms) AuthorOf(campus domain.Campus, id string) (string, bool) {
	rl := r.logs[campus]
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for _, m := range rl.messages {
		if m.ID == id {
			return m.AuthorSID, true
		}
	}
	return "", false
}

// Sizes reports per-campus log lengths for the stats endpoint.
func (r *Rooms) Sizes() map[domain.Campus]int {
	out := make(map[domain.Campus]int, len(r.logs))
	for c := range r.logs {
		out[c] = r.Len(c)
	}
	return out
}
