package domain

import (
	"fmt"
	"time"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportDismissed ReportStatus = "dismissed"
	ReportReviewed  ReportStatus = "reviewed"
)

const (
	ReportTypeMessage   = "message"
	ReportTypeMatchChat = "match_chat"
)

// Report is a moderation record forwarded to the document store.
// ReportedIP is a one-way hash of the reported party's origin address;
// review resolves against that hash only, nicknames are informational.
type Report struct {
	ID               string       `json:"id"`
	Type             string       `json:"type"`
	MessageID        string       `json:"messageId,omitempty"`
	ReporterNickname string       `json:"reporterNickname"`
	ReporterSession  string       `json:"reporterSession"`
	ReportedNickname string       `json:"reportedNickname,omitempty"`
	ReportedCampus   string       `json:"reportedCampus,omitempty"`
	Reason           string       `json:"reason"`
	Details          string       `json:"details"`
	Timestamp        time.Time    `json:"timestamp"`
	Status           ReportStatus `json:"status"`
	ReportedIP       string       `json:"reportedIP"`
	ReviewedAt       *time.Time   `json:"reviewedAt,omitempty"`
}

func NewReportID() string {
	return fmt.Sprintf("report_%d_%s", time.Now().UnixMilli(), randomSuffix())
}

type BanType string

const (
	BanTemporary BanType = "temporary"
	BanPermanent BanType = "permanent"
)

// Ban is stored keyed by the hashed origin address.
type Ban struct {
	IPHash        string     `json:"ipHash"`
	Nickname      string     `json:"nickname,omitempty"`
	Type          BanType    `json:"type"`
	Reason        string     `json:"reason"`
	BannedBy      string     `json:"bannedBy"`
	Scope         string     `json:"scope"`
	Timestamp     time.Time  `json:"timestamp"`
	BannedUntil   *time.Time `json:"bannedUntil,omitempty"`
	DurationHours int        `json:"durationHours,omitempty"`
}

// BanStatus is the gate's answer for one origin address.
type BanStatus struct {
	Banned           bool       `json:"banned"`
	Type             BanType    `json:"type,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	BannedBy         string     `json:"bannedBy,omitempty"`
	BannedUntil      *time.Time `json:"bannedUntil,omitempty"`
	RemainingSeconds int        `json:"timeRemaining,omitempty"`
}
