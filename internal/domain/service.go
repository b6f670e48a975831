package domain

import (
	"sort"
	"time"
)

// Status is the derived health label of a service.
type Status string

const (
	StatusOperational Status = "operational"
	StatusDegraded    Status = "degraded"
	StatusDown        Status = "down"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusOperational, StatusDegraded, StatusDown:
		return true
	}
	return false
}

// Trend is a coarse indicator of recent reporting activity.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// IsValid reports whether t is one of the known trends.
func (t Trend) IsValid() bool {
	return t == TrendUp || t == TrendDown
}

// Service is a monitored external platform as seen by the community.
//
// Status, Trend and ReportsCount are owned by the report aggregator and
// never written by anything else once the service is registered.
type Service struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is an opaque lowercase identifier.
	ID string `json:"id"`

	// NormalizedName is NormalizeName(Name). Unique across services.
	NormalizedName string `json:"normalizedName"`

	// ─────────────────────────────
	// Functional description
	// ─────────────────────────────

	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Website     string `json:"website"`

	// ─────────────────────────────
	// Derived health
	// ─────────────────────────────

	Status Status `json:"status"`

	// ReportsCount is the lifetime number of reports. It never decreases.
	ReportsCount int64 `json:"reportsCount"`

	Trend Trend `json:"trend"`

	// ─────────────────────────────
	// Bookkeeping
	// ─────────────────────────────

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewService builds a freshly registered service.
func NewService(id, name, category, description, website string, now time.Time) *Service {
	return &Service{
		ID:             id,
		NormalizedName: NormalizeName(name),
		Name:           name,
		Category:       category,
		Description:    description,
		Website:        website,
		Status:         StatusOperational,
		ReportsCount:   0,
		Trend:          TrendDown,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// SortServices orders services by ReportsCount descending, then Name
// ascending. The sort is stable.
func SortServices(services []*Service) {
	sort.SliceStable(services, func(i, j int) bool {
		if services[i].ReportsCount != services[j].ReportsCount {
			return services[i].ReportsCount > services[j].ReportsCount
		}
		return services[i].Name < services[j].Name
	})
}
