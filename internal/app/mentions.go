package app

import (
	"regexp"
	"sync"

	"github.com/sorsu/tiktalk/internal/core"
)

var mentionRe = regexp.MustCompile(`@([a-zA-Z0-9_-]{3,20})`)

// ExtractMentions pulls @nickname candidates out of message content:
// deduplicated, first-appearance order preserved. Candidates are not
// validated here; resolution against live same-campus sessions happens
// at send time and unresolved names are silently dropped.
func ExtractMentions(content string) []string {
	var mentions []string
	seen := make(map[string]struct{})
	for _, match := range mentionRe.FindAllStringSubmatch(content, -1) {
		nickname := match[1]
		if _, dup := seen[nickname]; dup {
			continue
		}
		seen[nickname] = struct{}{}
		mentions = append(mentions, nickname)
	}
	return mentions
}

// MentionNote is one stored mention notification for a connection.
type MentionNote struct {
	MessageID string
	From      string
	Read      bool
}

// Mentions keeps per-connection unread mention state. State dies with
// the connection.
type Mentions struct {
	mu    sync.Mutex
	notes map[core.SessionID][]MentionNote
}

func NewMentions() *Mentions {
	return &Mentions{notes: make(map[core.SessionID][]MentionNote)}
}

func (m *Mentions) Add(sid core.SessionID, messageID, from string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[sid] = append(m.notes[sid], MentionNote{MessageID: messageID, From: from})
}

func (m *Mentions) MarkRead(sid core.SessionID, messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	notes := m.notes[sid]
	for i := range notes {
		if notes[i].MessageID == messageID {
			notes[i].Read = true
			return
		}
	}
}

func (m *Mentions) Pending(sid core.SessionID) []MentionNote {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MentionNote, len(m.notes[sid]))
	copy(out, m.notes[sid])
	return out
}

// Forget drops all state for a connection. Part of the disconnect
// teardown; a no-op when nothing is stored.
func (m *Mentions) Forget(sid core.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notes, sid)
}
