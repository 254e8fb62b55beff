package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxMessageLen caps room, direct and match message content.
	MaxMessageLen = 500

	// EditWindow is how long after creation a message stays editable.
	EditWindow = 5 * time.Minute

	// DeletedPlaceholder replaces the content of a deleted message.
	DeletedPlaceholder = "[Message deleted]"
)

// Message is a room chat message. Identity is immutable, content is
// mutated in place by author-only edit/delete. AuthorSID is the opaque
// connection identity the message was sent from; it authorizes
// edit/delete and is never exposed on the wire.
type Message struct {
	ID        string
	AuthorSID string
	Nickname  string
	Campus    Campus
	Content   string
	Timestamp time.Time
	Edited    bool
	EditedAt  *time.Time
	Deleted   bool
	DeletedAt *time.Time
	ReplyTo   string
	Mentions  []string
	Reactions map[string]map[string]struct{} // emoji -> set of reacting SIDs
}

func NewMessage(authorSID, nickname string, campus Campus, content, replyTo string, mentions []string) *Message {
	return &Message{
		ID:        NewMessageID(),
		AuthorSID: authorSID,
		Nickname:  nickname,
		Campus:    campus,
		Content:   content,
		Timestamp: time.Now(),
		ReplyTo:   replyTo,
		Mentions:  mentions,
		Reactions: make(map[string]map[string]struct{}),
	}
}

// NewMessageID returns an id unique enough to never collide in a
// bounded in-memory log: millisecond timestamp plus random suffix.
func NewMessageID() string {
	return fmt.Sprintf("msg_%d_%s", time.Now().UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// ReactionCounts projects the reaction sets to emoji -> count. Reactor
// identity stays private.
func (m *Message) ReactionCounts() map[string]int {
	counts := make(map[string]int, len(m.Reactions))
	for emoji, who := range m.Reactions {
		counts[emoji] = len(who)
	}
	return counts
}

// MessageView is the wire-safe snapshot of a Message, taken under the
// room lock so broadcasts never race in-place mutation.
type MessageView struct {
	ID        string         `json:"id"`
	Nickname  string         `json:"nickname"`
	Campus    Campus         `json:"campus"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Edited    bool           `json:"edited"`
	EditedAt  *time.Time     `json:"editedAt,omitempty"`
	Deleted   bool           `json:"deleted"`
	ReplyTo   string         `json:"replyTo,omitempty"`
	Mentions  []string       `json:"mentions"`
	Reactions map[string]int `json:"reactions"`
}

func (m *Message) View() MessageView {
	return MessageView{
		ID:        m.ID,
		Nickname:  m.Nickname,
		Campus:    m.Campus,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Edited:    m.Edited,
		EditedAt:  m.EditedAt,
		Deleted:   m.Deleted,
		ReplyTo:   m.ReplyTo,
		Mentions:  m.Mentions,
		Reactions: m.ReactionCounts(),
	}
}

// DirectMessage is an ephemeral point-to-point envelope. The server
// keeps no DM history, only per-recipient unread counters.
type DirectMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDirectMessage(from, to, content string) DirectMessage {
	return DirectMessage{
		ID:        NewMessageID(),
		From:      from,
		To:        to,
		Content:   content,
		Timestamp: time.Now(),
	}
}
