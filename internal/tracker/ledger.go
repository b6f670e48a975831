package tracker

import (
	"context"
	"math"
	"time"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
)

// ReportQuery selects reports. Zero or negative fields are unset.
type ReportQuery struct {
	ServiceID   string
	WindowHours int
	Limit       int
}

// maxWindowHours is the widest window a time.Duration can hold. Wider windows
// have no lower bound.
const maxWindowHours = math.MaxInt64 / int64(time.Hour)

func (q ReportQuery) filter(now time.Time) domain.ReportFilter {
	f := domain.ReportFilter{ServiceID: q.ServiceID}
	if q.WindowHours > 0 {
		f.Until = now
		if int64(q.WindowHours) <= maxWindowHours {
			f.Since = now.Add(-time.Duration(q.WindowHours) * time.Hour)
		}
	}
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	return f
}

// Reports returns reports matching q, newest first.
func (t *Tracker) Reports(ctx context.Context, q ReportQuery) ([]*domain.Report, error) {
	reports, err := t.store.ListReports(ctx, q.filter(t.now().UTC()))
	if err != nil {
		return nil, classify("list reports", err)
	}
	return reports, nil
}

// Recent returns the newest limit reports.
func (t *Tracker) Recent(ctx context.Context, limit int) ([]*domain.Report, error) {
	return t.Reports(ctx, ReportQuery{Limit: limit})
}

// ByService returns every report of one service, newest first.
func (t *Tracker) ByService(ctx context.Context, serviceID string) ([]*domain.Report, error) {
	return t.Reports(ctx, ReportQuery{ServiceID: serviceID})
}

// WithinWindow returns reports from the last hours hours, bounds included.
func (t *Tracker) WithinWindow(ctx context.Context, hours int) ([]*domain.Report, error) {
	return t.Reports(ctx, ReportQuery{WindowHours: hours})
}

// CountWithinWindow counts reports from the last hours hours.
func (t *Tracker) CountWithinWindow(ctx context.Context, hours int) (int, error) {
	count, err := t.store.CountReports(ctx, ReportQuery{WindowHours: hours}.filter(t.now().UTC()))
	if err != nil {
		return 0, classify("count reports", err)
	}
	return count, nil
}
