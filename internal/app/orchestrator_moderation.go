package app

import (
	"time"

	"github.com/sorsu/tiktalk/internal/core"
	"github.com/sorsu/tiktalk/internal/domain"
	"github.com/sorsu/tiktalk/internal/moderation"
	"github.com/sorsu/tiktalk/internal/validate"
)

const unknownOrigin = "unknown"

// SubmitReport files a report against a room message. The stored
// origin hash belongs to the reported author when their session is
// still live; review resolves against that hash only.
func (o *Orchestrator) SubmitReport(sid core.SessionID, messageID, reason, details string) error {
	reporter, ok := o.Registry.Lookup(sid)
	if !ok {
		return ErrNotJoined
	}
	cleanReason := validate.Sanitize(reason)
	if cleanReason == "" {
		return ErrEmptyContent
	}

	reportedIP := unknownOrigin
	if messageID != "" {
		if authorSID, found := o.Rooms.AuthorOf(reporter.Campus, messageID); found {
			if author, live := o.Registry.Lookup(core.SessionID(authorSID)); live {
				reportedIP = moderation.HashIP(author.IP)
			}
		}
	}

	report := domain.Report{
		ID:               domain.NewReportID(),
		Type:             domain.ReportTypeMessage,
		MessageID:        messageID,
		ReporterNickname: reporter.Nickname,
		ReporterSession:  string(sid),
		Reason:           cleanReason,
		Details:          validate.Sanitize(details),
		Timestamp:        time.Now(),
		Status:           domain.ReportPending,
		ReportedIP:       reportedIP,
	}
	if err := o.Gate.SubmitReport(report); err != nil {
		return err
	}
	emit(reporter.Conn, core.EvReportOK, core.ReportOKPayload{Message: "Report submitted successfully"})
	return nil
}

// MatchReport files a report against the caller's current match
// partner.
func (o *Orchestrator) MatchReport(sid core.SessionID, reason, details string) error {
	reporter, ok := o.Registry.Lookup(sid)
	if !ok {
		return ErrNotJoined
	}
	partnerSID, matched := o.Matches.PartnerOf(sid)
	if !matched {
		return ErrNotInMatch
	}
	cleanReason := validate.Sanitize(reason)
	if cleanReason == "" {
		return ErrEmptyContent
	}

	report := domain.Report{
		ID:               domain.NewReportID(),
		Type:             domain.ReportTypeMatchChat,
		ReporterNickname: reporter.Nickname,
		ReporterSession:  string(sid),
		ReportedNickname: "Unknown",
		ReportedCampus:   "Unknown",
		Reason:           cleanReason,
		Details:          validate.Sanitize(details),
		Timestamp:        time.Now(),
		Status:           domain.ReportPending,
		ReportedIP:       unknownOrigin,
	}
	if partner, live := o.Registry.Lookup(partnerSID); live {
		report.ReportedNickname = partner.Nickname
		report.ReportedCampus = string(partner.Campus)
		report.ReportedIP = moderation.HashIP(partner.IP)
	}
	if err := o.Gate.SubmitReport(report); err != nil {
		return err
	}
	emit(reporter.Conn, core.EvReportOK, core.ReportOKPayload{Message: "Match partner reported successfully"})
	return nil
}

// DisconnectByIP pushes the ban notice to every live session from an
// origin address and tears each one down. Used when an admin bans a
// connected user.
func (o *Orchestrator) DisconnectByIP(ip string, status domain.BanStatus) int {
	sessions := o.Registry.ByIP(ip)
	for _, s := range sessions {
		emit(s.Conn, core.EvBanned, status)
		s.Conn.Close()
		o.Disconnect(s.SID)
	}
	return len(sessions)
}
