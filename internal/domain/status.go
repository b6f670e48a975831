package domain

const (
	// DegradedThreshold is the lifetime report count above which a
	// service is considered degraded.
	DegradedThreshold = 20
	// DownThreshold is the lifetime report count above which a service
	// is considered down.
	DownThreshold = 100
)

// NextStatus derives the status of a service from its post-increment
// lifetime report count.
//
// Counts at or below DegradedThreshold leave the current status untouched:
// the rule only ever escalates and never returns a service to operational.
func NextStatus(current Status, reportsCount int64) Status {
	switch {
	case reportsCount > DownThreshold:
		return StatusDown
	case reportsCount > DegradedThreshold:
		return StatusDegraded
	default:
		return current
	}
}

// RecordReport applies one accepted report to svc: the counter grows by
// exactly one, the status is recomputed from the new count and the trend
// goes up. It returns the status held before the report.
func RecordReport(svc *Service) (previous Status) {
	previous = svc.Status
	svc.ReportsCount++
	svc.Status = NextStatus(svc.Status, svc.ReportsCount)
	svc.Trend = TrendUp
	return previous
}
