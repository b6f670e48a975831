package tracker

import (
	"context"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/logger"
	"github.com/MrSnakeDoc/statusboard/internal/store"
)

// Submit records a problem report and escalates the service status.
//
// The report insert and the service update commit together or not at all.
// A missing service yields domain.ErrNotFound and leaves the store
// untouched.
func (t *Tracker) Submit(ctx context.Context, in domain.SubmitInput) (*domain.Report, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := t.timestamp()
	report := &domain.Report{
		ID:          t.newID(),
		ServiceID:   in.ServiceID,
		ProblemType: in.ProblemType,
		Description: in.Description,
		Location:    in.Location,
		Timestamp:   now,
	}

	var updated domain.Service
	var previous domain.Status
	err := t.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		svc, err := tx.ServiceByID(ctx, in.ServiceID)
		if err != nil {
			return err
		}

		report.ServiceName = svc.Name
		if err := tx.InsertReport(ctx, report); err != nil {
			return err
		}

		previous = domain.RecordReport(svc)
		svc.UpdatedAt = now
		if err := tx.UpdateService(ctx, svc); err != nil {
			return err
		}
		updated = *svc
		return nil
	})
	if err != nil {
		return nil, classify("submit report", err)
	}

	t.metrics.ReportSubmitted(report.ProblemType)
	t.log.Info("report submitted",
		logger.String("report_id", report.ID),
		logger.String("service_id", updated.ID),
		logger.String("problem_type", string(report.ProblemType)),
		logger.Int64("reports_count", updated.ReportsCount))

	if previous != updated.Status {
		t.metrics.StatusTransition(previous, updated.Status)
		t.log.Warn("service status changed",
			logger.String("service_id", updated.ID),
			logger.String("name", updated.Name),
			logger.String("from", string(previous)),
			logger.String("to", string(updated.Status)),
			logger.Int64("reports_count", updated.ReportsCount))
	}
	return report, nil
}
