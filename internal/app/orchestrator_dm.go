package app

import (
	"github.com/sorsu/tiktalk/internal/core"
	"github.com/sorsu/tiktalk/internal/domain"
)

const dmPreviewLen = 50

// SendDM delivers a direct message to a same-campus recipient resolved
// by nickname (first live match wins), mirrors it to the sender, and
// bumps the recipient's unread counter.
func (o *Orchestrator) SendDM(sid core.SessionID, recipientNickname, rawContent string) error {
	sender, ok := o.Registry.Lookup(sid)
	if !ok {
		return ErrNotJoined
	}
	content, err := checkContent(rawContent)
	if err != nil {
		return err
	}
	recipient, found := o.Registry.FindByNickname(sender.Campus, recipientNickname)
	if !found {
		return ErrRecipientGone
	}

	dm := domain.NewDirectMessage(sender.Nickname, recipientNickname, content)
	emit(sender.Conn, core.EvDMReceive, dm)
	emit(recipient.Conn, core.EvDMReceive, dm)

	preview := content
	if runes := []rune(content); len(runes) > dmPreviewLen {
		preview = string(runes[:dmPreviewLen]) + "..."
	}
	emit(recipient.Conn, core.EvDMNotify, core.DMNotifyPayload{
		From:    sender.Nickname,
		Preview: preview,
	})
	emit(recipient.Conn, core.EvDMUnread, core.DMUnreadPayload{
		Count: o.DMs.Increment(recipient.SID),
	})
	return nil
}

// StartDM is a presence probe before the client opens a DM pane.
func (o *Orchestrator) StartDM(sid core.SessionID, withNickname string) error {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return ErrNotJoined
	}
	if _, found := o.Registry.FindByNickname(s.Campus, withNickname); !found {
		return ErrUserGone
	}
	emit(s.Conn, core.EvDMStarted, core.DMStartedPayload{
		WithNickname: withNickname,
		Campus:       s.Campus,
	})
	return nil
}

// ReadDM acknowledges one unread DM and pushes the new count.
func (o *Orchestrator) ReadDM(sid core.SessionID) {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	emit(s.Conn, core.EvDMUnread, core.DMUnreadPayload{Count: o.DMs.Decrement(sid)})
}

// DMTyping relays a typing indicator to the DM partner, resolved the
// same way as delivery. Silent when the partner is gone.
func (o *Orchestrator) DMTyping(sid core.SessionID, toNickname string, typing bool) {
	s, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	recipient, found := o.Registry.FindByNickname(s.Campus, toNickname)
	if !found {
		return
	}
	emit(recipient.Conn, core.EvDMTyping, core.DMTypingPayload{
		From:   s.Nickname,
		Typing: typing,
	})
}
