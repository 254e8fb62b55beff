package moderation

import (
	"errors"
	"time"

	"github.com/sorsu/tiktalk/internal/domain"
	"github.com/sorsu/tiktalk/internal/storage"
)

var ErrReportNotFound = errors.New("report not found")

// Reports wraps the reports collection, an append-mostly list.
type Reports struct {
	store *storage.Store
}

func NewReports(store *storage.Store) *Reports {
	return &Reports{store: store}
}

func (r *Reports) load() ([]domain.Report, error) {
	var reports []domain.Report
	if err := r.store.Read(storage.CollectionReports, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *Reports) Append(report domain.Report) error {
	reports, err := r.load()
	if err != nil {
		return err
	}
	reports = append(reports, report)
	return r.store.Write(storage.CollectionReports, reports)
}

// List returns reports most recent first, optionally filtered by
// status and campus.
func (r *Reports) List(status domain.ReportStatus, campus string) ([]domain.Report, error) {
	reports, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Report, 0, len(reports))
	for i := len(reports) - 1; i >= 0; i-- {
		rep := reports[i]
		if status != "" && rep.Status != status {
			continue
		}
		if campus != "" && rep.ReportedCampus != campus {
			continue
		}
		out = append(out, rep)
	}
	return out, nil
}

// SetStatus updates one report's review state and stamps it.
func (r *Reports) SetStatus(id string, status domain.ReportStatus) (domain.Report, error) {
	reports, err := r.load()
	if err != nil {
		return domain.Report{}, err
	}
	for i := range reports {
		if reports[i].ID != id {
			continue
		}
		if status != "" {
			reports[i].Status = status
		}
		now := time.Now()
		reports[i].ReviewedAt = &now
		if err := r.store.Write(storage.CollectionReports, reports); err != nil {
			return domain.Report{}, err
		}
		return reports[i], nil
	}
	return domain.Report{}, ErrReportNotFound
}

func (r *Reports) Counts() (total, pending int) {
	reports, err := r.load()
	if err != nil {
		return 0, 0
	}
	for _, rep := range reports {
		if rep.Status == domain.ReportPending {
			pending++
		}
	}
	return len(reports), pending
}
