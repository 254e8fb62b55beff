package moderation

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/sorsu/tiktalk/internal/domain"
)

// ErrStore is the generic failure surfaced to callers when the
// document store misbehaves. Internal detail stays in the logs.
var ErrStore = errors.New("moderation store unavailable")

// Gate sits between transport and core state. It is consulted before
// any session state exists for a connection, and it is the only path
// by which reports leave the process.
type Gate struct {
	bans    *BanList
	reports *Reports
}

func NewGate(bans *BanList, reports *Reports) *Gate {
	return &Gate{bans: bans, reports: reports}
}

// Check resolves the ban status of an origin address. A store failure
// fails open: the address is admitted and the error logged, matching
// the availability-over-strictness stance of the rest of the service.
func (g *Gate) Check(ip string) domain.BanStatus {
	status, err := g.bans.Check(ip)
	if err != nil {
		log.Error().Err(err).Str("module", "moderation.gate").Msg("ban check failed, admitting")
		return domain.BanStatus{}
	}
	return status
}

// SubmitReport forwards a report to the store. The caller only learns
// success or a generic failure.
func (g *Gate) SubmitReport(report domain.Report) error {
	if err := g.reports.Append(report); err != nil {
		log.Error().Err(err).Str("module", "moderation.gate").Str("report", report.ID).Msg("report write failed")
		return ErrStore
	}
	log.Info().Str("module", "moderation.gate").Str("report", report.ID).Str("type", report.Type).Msg("report accepted")
	return nil
}
