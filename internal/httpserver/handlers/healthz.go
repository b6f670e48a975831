package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
)

type buildInfo struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

type healthzResponse struct {
	Status        string    `json:"status"`
	StartedAt     time.Time `json:"started_at"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Storage       string    `json:"storage,omitempty"`
	CatalogRuns   *int      `json:"catalog_runs,omitempty"`
	Build         buildInfo `json:"build"`
}

// Healthz is the liveness check. It never touches the store: use /readyz to
// check that the backend answers.
func Healthz(d deps.Deps) http.HandlerFunc {
	build := buildInfo{
		Version:   d.Version,
		Commit:    d.Commit,
		BuildDate: d.BuildDate,
		GoVersion: d.GoVersion,
	}
	var storage string
	if d.Store != nil {
		storage = d.Store.Engine()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthzResponse{
			Status:        "ok",
			StartedAt:     d.StartTime.UTC(),
			UptimeSeconds: d.Now().Sub(d.StartTime).Seconds(),
			Storage:       storage,
			Build:         build,
		}
		if d.Catalog != nil {
			runs := d.Catalog.State().Runs
			resp.CatalogRuns = &runs
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, resp)
	}
}
