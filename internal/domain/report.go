package domain

import (
	"sort"
	"time"
)

// ProblemType classifies what a reporter experienced.
type ProblemType string

const (
	ProblemConnection ProblemType = "connection"
	ProblemSlow       ProblemType = "slow"
	ProblemOutage     ProblemType = "outage"
)

// IsValid reports whether p is one of the known problem types.
func (p ProblemType) IsValid() bool {
	switch p {
	case ProblemConnection, ProblemSlow, ProblemOutage:
		return true
	}
	return false
}

// Report is an append-only user claim of a problem with a service.
type Report struct {
	ID        string `json:"id"`
	ServiceID string `json:"serviceId"`

	// ServiceName is the service name at submission time. It is not
	// rewritten if the service is renamed later.
	ServiceName string `json:"serviceName"`

	ProblemType ProblemType `json:"problemType"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Timestamp   time.Time   `json:"timestamp"`
}

// ReportFilter selects reports from the ledger. Zero values mean "unset".
type ReportFilter struct {
	ServiceID string
	Since     time.Time // inclusive lower bound
	Until     time.Time // inclusive upper bound
	Limit     int
}

// Match reports whether r passes the service and time constraints of f.
// Limit is applied by the caller after ordering.
func (f ReportFilter) Match(r *Report) bool {
	if f.ServiceID != "" && r.ServiceID != f.ServiceID {
		return false
	}
	if !f.Since.IsZero() && r.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && r.Timestamp.After(f.Until) {
		return false
	}
	return true
}

// SortReports orders reports newest first. Ties keep their relative order.
func SortReports(reports []*Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Timestamp.After(reports[j].Timestamp)
	})
}

// ApplyLimit caps reports to limit entries when limit is positive.
func ApplyLimit(reports []*Report, limit int) []*Report {
	if limit > 0 && len(reports) > limit {
		return reports[:limit]
	}
	return reports
}
