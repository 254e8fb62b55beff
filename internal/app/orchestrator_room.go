package app

import (
	"unicode/utf8"

	"github.com/sorsu/tiktalk/internal/core"
	"github.com/sorsu/tiktalk/internal/domain"
	"github.com/sorsu/tiktalk/internal/validate"
)

// checkContent runs the shared sanitize/length/profanity gate for
// content-bearing operations. The cap counts runes, not bytes.
func checkContent(raw string) (string, error) {
	content := validate.Sanitize(raw)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > domain.MaxMessageLen {
		return "", ErrMessageTooLong
	}
	if validate.ContainsProfanity(content) {
		return "", ErrProfanity
	}
	return content, nil
}

// SendMessage appends a room message and fans it out, then resolves
// any @mentions against live same-campus sessions.
func (o *Orchestrator) SendMessage(sid core.SessionID, rawContent, replyTo string) error {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return ErrNotJoined
	}
	content, err := checkContent(rawContent)
	if err != nil {
		return err
	}

	mentions := ExtractMentions(content)
	msg := domain.NewMessage(string(sid), s.Nickname, s.Campus, content, replyTo, mentions)
	view := o.Rooms.Append(msg)
	o.broadcast(s.Campus, core.EvMessage, view)

	for _, nickname := range mentions {
		target, found := o.Registry.FindByNickname(s.Campus, nickname)
		if !found {
			continue // offline or wrong campus, not an error
		}
		emit(target.Conn, core.EvMention, core.MentionPayload{
			MessageID: msg.ID,
			From:      s.Nickname,
			Content:   content,
			Campus:    s.Campus,
			Timestamp: msg.Timestamp,
		})
		o.Mentions.Add(target.SID, msg.ID, s.Nickname)
	}
	return nil
}

// EditMessage mutates the caller's own message within the edit window
// and re-broadcasts it.
func (o *Orchestrator) EditMessage(sid core.SessionID, messageID, rawContent string) error {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return ErrNotJoined
	}
	content, err := checkContent(rawContent)
	if err != nil {
		return err
	}
	view, err := o.Rooms.Edit(s.Campus, messageID, string(sid), content)
	if err != nil {
		return err
	}
	o.broadcast(s.Campus, core.EvEdited, view)
	return nil
}

// DeleteMessage is author-only and terminal.
func (o *Orchestrator) DeleteMessage(sid core.SessionID, messageID string) error {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return ErrNotJoined
	}
	if err := o.Rooms.Delete(s.Campus, messageID, string(sid)); err != nil {
		return err
	}
	o.broadcast(s.Campus, core.EvDeleted, core.DeletedPayload{MessageID: messageID})
	return nil
}

// React toggles the caller's reaction and broadcasts the emoji->count
// projection. Missing targets stay silent; reactions are low stakes.
func (o *Orchestrator) React(sid core.SessionID, messageID, emoji string) {
	s, ok := o.Registry.Lookup(sid)
	if !ok || messageID == "" || emoji == "" {
		return
	}
	counts, ok := o.Rooms.ToggleReaction(s.Campus, messageID, emoji, string(sid))
	if !ok {
		return
	}
	o.broadcast(s.Campus, core.EvReaction, core.ReactionPayload{
		MessageID: messageID,
		Reactions: counts,
	})
}

// Typing relays a typing indicator to everyone else in the campus.
// Fire-and-forget, no state.
func (o *Orchestrator) Typing(sid core.SessionID, typing bool) {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	o.broadcast(s.Campus, core.EvTyping, core.TypingPayload{
		Nickname: s.Nickname,
		Typing:   typing,
	}, sid)
}

// MentionRead marks one stored mention notification as read.
func (o *Orchestrator) MentionRead(sid core.SessionID, messageID string) {
	o.Mentions.MarkRead(sid, messageID)
}
