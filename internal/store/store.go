// Package store defines the persistence contract shared by every storage
// engine (memory, redis, postgres, sqlite).
//
// Engines return domain.ErrNotFound for missing services and
// domain.ErrServiceExists when a normalized name is already taken. Any
// other error is an engine failure.
package store

import (
	"context"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
)

// Engine names accepted by the configuration.
const (
	EngineMemory   = "memory"
	EngineRedis    = "redis"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// ServiceReader looks up services.
type ServiceReader interface {
	// ServiceByID matches the identifier exactly.
	ServiceByID(ctx context.Context, id string) (*domain.Service, error)
	// ServiceByNormalizedName matches domain.Service.NormalizedName exactly.
	ServiceByNormalizedName(ctx context.Context, normalized string) (*domain.Service, error)
}

// Tx is the view of the store inside one atomic unit of work. Writes made
// through a Tx become visible only if the unit commits.
type Tx interface {
	ServiceReader

	// InsertService adds a new service. It fails with
	// domain.ErrServiceExists if the normalized name is taken.
	InsertService(ctx context.Context, svc *domain.Service) error
	// UpdateService overwrites the mutable fields of an existing service.
	UpdateService(ctx context.Context, svc *domain.Service) error
	// InsertReport appends a report. It fails with domain.ErrNotFound if
	// the referenced service does not exist.
	InsertReport(ctx context.Context, report *domain.Report) error
}

// Store is a transactional service and report store.
type Store interface {
	ServiceReader

	// Atomic runs fn as a single unit of work: either every write made
	// through tx is persisted or none is. Concurrent units touching the
	// same service or the same normalized name are serialized. Engines
	// with optimistic concurrency may invoke fn more than once, so fn must
	// not have side effects outside tx.
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// ListServices returns every service in no particular order.
	ListServices(ctx context.Context) ([]*domain.Service, error)
	// ListReports returns matching reports newest first, capped by
	// filter.Limit when positive.
	ListReports(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error)
	// CountReports counts matching reports, ignoring filter.Limit.
	CountReports(ctx context.Context, filter domain.ReportFilter) (int, error)

	// Engine returns the engine name.
	Engine() string
	Ping(ctx context.Context) error
	Close() error
}
