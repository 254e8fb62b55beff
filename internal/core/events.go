package core

import (
	"time"

	"github.com/sorsu/tiktalk/internal/domain"
)

// Outbound event names. Clients dispatch on these.
const (
	EvError    = "error"
	EvBanned   = "banned"
	EvHistory  = "message:history"
	EvJoined   = "user:joined"
	EvLeft     = "user:left"
	EvMessage  = "message:receive"
	EvEdited   = "message:edited"
	EvDeleted  = "message:deleted"
	EvReaction = "message:reaction:update"
	EvMention  = "mention:notification"
	EvTyping   = "typing:user"

	EvDMReceive    = "dm:receive"
	EvDMNotify     = "dm:notification"
	EvDMUnread     = "dm:unread:update"
	EvDMStarted    = "dm:started"
	EvDMTyping     = "dm:user:typing"
	EvUsersList    = "users:list:response"
	EvReportOK     = "report:success"
	EvMatchSearch  = "match:searching"
	EvMatchFound   = "match:found"
	EvMatchMessage = "match:message:receive"
	EvMatchTyping  = "match:partner:typing"
	EvPartnerLeft  = "match:partner:left"
	EvMatchLeft    = "match:left"
	EvMatchCancel  = "match:cancelled"
)

type ErrorPayload struct {
	Message string `json:"message"`
}

type JoinedPayload struct {
	Nickname    string        `json:"nickname"`
	Campus      domain.Campus `json:"campus"`
	OnlineCount int           `json:"onlineCount"`
}

type LeftPayload struct {
	Nickname    string `json:"nickname"`
	OnlineCount int    `json:"onlineCount"`
}

type DeletedPayload struct {
	MessageID string `json:"messageId"`
}

type ReactionPayload struct {
	MessageID string         `json:"messageId"`
	Reactions map[string]int `json:"reactions"`
}

type MentionPayload struct {
	MessageID string        `json:"messageId"`
	From      string        `json:"from"`
	Content   string        `json:"content"`
	Campus    domain.Campus `json:"campus"`
	Timestamp time.Time     `json:"timestamp"`
}

type TypingPayload struct {
	Nickname string `json:"nickname"`
	Typing   bool   `json:"typing"`
}

type DMNotifyPayload struct {
	From    string `json:"from"`
	Preview string `json:"preview"`
}

type DMUnreadPayload struct {
	Count int `json:"count"`
}

type DMStartedPayload struct {
	WithNickname string        `json:"withNickname"`
	Campus       domain.Campus `json:"campus"`
}

type DMTypingPayload struct {
	From   string `json:"from"`
	Typing bool   `json:"typing"`
}

type OnlineUser struct {
	Nickname string        `json:"nickname"`
	Campus   domain.Campus `json:"campus"`
}

type ReportOKPayload struct {
	Message string `json:"message"`
}

type MatchSearchPayload struct {
	QueuePosition int    `json:"queuePosition"`
	MatchType     string `json:"matchType"`
}

// MatchFoundPayload deliberately carries only the partner's campus.
// Match chats are anonymous; the partner's nickname never crosses.
type MatchFoundPayload struct {
	MatchID       string        `json:"matchId"`
	PartnerCampus domain.Campus `json:"partnerCampus"`
	Timestamp     time.Time     `json:"timestamp"`
}

type MatchMessagePayload struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsOwn     bool      `json:"isOwn"`
}

type MatchTypingPayload struct {
	Typing bool `json:"typing"`
}
