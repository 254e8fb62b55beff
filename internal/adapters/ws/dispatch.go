package ws

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/sorsu/tiktalk/internal/core"
)

var errNicknameCampusRequired = errors.New("Nickname and campus required")

// dispatch routes one inbound frame. Content-bearing operations report
// failures back as error events; low-stakes signals fail silently.
func (ctl *Controller) dispatch(sid core.SessionID, ip string, c *wsConn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad json frame")
		return
	}

	switch env.Type {
	case "user:join":
		ctl.handleJoin(sid, ip, c, env.Data)
	case "message:send":
		var p struct {
			Content string `json:"content"`
			ReplyTo string `json:"replyTo"`
		}
		if !decode(c, env.Data, &p) {
			return
		}
		if err := ctl.Orch.SendMessage(sid, p.Content, p.ReplyTo); err != nil {
			ctl.sendError(c, err)
		}
	case "message:edit":
		var p struct {
			MessageID  string `json:"messageId"`
			NewContent string `json:"newContent"`
		}
		if !decode(c, env.Data, &p) {
			return
		}
		if err := ctl.Orch.EditMessage(sid, p.MessageID, p.NewContent); err != nil {
			ctl.sendError(c, err)
		}
	case "message:delete":
		var p struct {
			MessageID string `json:"messageId"`
		}
		if !decode(c, env.Data, &p) {
			return
		}
		if err := ctl.Orch.DeleteMessage(sid, p.MessageID); err != nil {
			ctl.sendError(c, err)
		}
	case "message:react":
		var p struct {
			MessageID string `json:"messageId"`
			Emoji     string `json:"emoji"`
		}
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return // reactions are low stakes, drop silently
		}
		ctl.Orch.React(sid, p.MessageID, p.Emoji)
	case "typing:start":
		ctl.Orch.Typing(sid, true)
	case "typing:stop":
		ctl.Orch.Typing(sid, false)
	case "mention:read":
		var p struct {
			MessageID string `json:"messageId"`
		}
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		ctl.Orch.MentionRead(sid, p.MessageID)
	case "report:submit":
		var p struct {
			MessageID string `json:"messageId"`
			Reason    string `json:"reason"`
			Details   string `json:"details"`
		}
		if !decode(c, env.Data, &p) {
			return
		}
		if !ctl.allowReport(c, ip) {
			return
		}
		if err := ctl.Orch.SubmitReport(sid, p.MessageID, p.Reason, p.Details); err != nil {
			ctl.sendError(c, err)
		}
	case "users:list":
		users, err := ctl.Orch.ListUsers(sid)
		if err != nil {
			ctl.sendError(c, err)
			return
		}
		_ = c.TrySend(core.Event{Type: core.EvUsersList, Data: users})
	case "dm:send":
		var p struct {
			RecipientNickname string `json:"recipientNickname"`
			Content           string `json:"content"`
		}
		if !decode(c, env.Data, &p) {
			return
		}
		if err := ctl.Orch.SendDM(sid, p.RecipientNickname, p.Content); err != nil {
			ctl.sendError(c, err)
		}
	case "dm:start":
		var p struct {
			WithNickname string `json:"withNickname"`
		}
		if !decode(c, env.Data, &p) {
			return
		}
		if err := ctl.Orch.StartDM(sid, p.WithNickname); err != nil {
			ctl.sendError(c, err)
		}
	case "dm:read":
		ctl.Orch.ReadDM(sid)
	case "dm:typing":
		ctl.dmTyping(sid, env.Data, true)
	case "dm:stop-typing":
		ctl.dmTyping(sid, env.Data, false)
	case "match:join":
		var p struct {
			MatchType string `json:"matchType"`
		}
		if !decode(c, env.Data, &p) {
			return
		}
		if err := ctl.Orch.MatchJoin(sid, p.MatchType); err != nil {
			ctl.sendError(c, err)
		}
	case "match:cancel":
		ctl.Orch.MatchCancel(sid)
	case "match:message":
		var p struct {
			Content string `json:"content"`
		}
		if !decode(c, env.Data, &p) {
			return
		}
		if err := ctl.Orch.MatchMessage(sid, p.Content); err != nil {
			ctl.sendError(c, err)
		}
	case "match:typing":
		ctl.Orch.MatchTyping(sid, true)
	case "match:stop-typing":
		ctl.Orch.MatchTyping(sid, false)
	case "match:leave":
		ctl.Orch.MatchLeave(sid)
	case "match:report":
		var p struct {
			Reason  string `json:"reason"`
			Details string `json:"details"`
		}
		if !decode(c, env.Data, &p) {
			return
		}
		if !ctl.allowReport(c, ip) {
			return
		}
		if err := ctl.Orch.MatchReport(sid, p.Reason, p.Details); err != nil {
			ctl.sendError(c, err)
		}
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) handleJoin(sid core.SessionID, ip string, c *wsConn, data []byte) {
	var p struct {
		Nickname string `json:"nickname"`
		Campus   string `json:"campus"`
	}
	if !decode(c, data, &p) {
		return
	}
	if p.Nickname == "" || p.Campus == "" {
		ctl.sendError(c, errNicknameCampusRequired)
		return
	}
	if err := ctl.Orch.Join(sid, c, ip, p.Nickname, p.Campus); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) dmTyping(sid core.SessionID, data []byte, typing bool) {
	var p struct {
		ToNickname string `json:"toNickname"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	ctl.Orch.DMTyping(sid, p.ToNickname, typing)
}

func (ctl *Controller) allowReport(c *wsConn, ip string) bool {
	if ctl.reportLimiter == nil || ctl.reportLimiter.Allow(ip) {
		return true
	}
	ctl.sendError(c, errors.New("You have reached the maximum number of reports per hour."))
	return false
}

// decode unmarshals a content-bearing payload, reporting malformed
// input back to the caller.
func decode(c *wsConn, data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.TrySend(core.Event{Type: core.EvError, Data: core.ErrorPayload{Message: "Malformed payload"}})
		return false
	}
	return true
}
