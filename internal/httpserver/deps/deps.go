package deps

import (
	"time"

	"github.com/MrSnakeDoc/statusboard/internal/logger"
	"github.com/MrSnakeDoc/statusboard/internal/metrics"
	"github.com/MrSnakeDoc/statusboard/internal/scheduler"
	"github.com/MrSnakeDoc/statusboard/internal/store"
	"github.com/MrSnakeDoc/statusboard/internal/tracker"
)

// CatalogState reports the latest catalog pass. *scheduler.CatalogReloader
// implements it.
type CatalogState interface {
	State() scheduler.ReloadState
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed to access the ops endpoints
	AllowedCIDRS   []string         // IPs allowed to access the ops endpoints
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins    []string         // Origins allowed by CORS, "*" for any
	RequestTimeout time.Duration    // Per-request timeout
	Tracker        *tracker.Tracker // Registry, ledger and aggregator
	Store          store.Store      // Backing store, pinged by readiness checks
	Metrics        *metrics.Metrics // Prometheus collectors (nil disables /metrics)
	Catalog        CatalogState     // nil when no catalog file is configured
	ReloadTrigger  chan struct{}    // Channel to trigger manual catalog reload
}

// Now returns d.TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
