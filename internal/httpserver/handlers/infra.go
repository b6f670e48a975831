package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
)

type componentStatus struct {
	OK       bool   `json:"ok"`
	Engine   string `json:"engine,omitempty"`
	Source   string `json:"source,omitempty"`
	Services *int   `json:"services,omitempty"`
	Reloads  *int   `json:"reloads,omitempty"`
	Last     string `json:"last_reload,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Error    string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Uptime     string                     `json:"uptime"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the storage engine and catalog seeding.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"storage": checkStorage(r.Context(), d),
			"catalog": checkCatalog(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Uptime:     d.Now().Sub(d.StartTime).Round(time.Second).String(),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if storage, exists := components["storage"]; exists && !storage.OK {
		return "critical"
	}
	if catalog, exists := components["catalog"]; exists && !catalog.OK {
		return "degraded"
	}
	return "operational"
}

func checkStorage(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := componentStatus{OK: true, Engine: d.Store.Engine()}
	if err := d.Store.Ping(ctx); err != nil {
		status.OK = false
		status.Error = err.Error()
		return status
	}

	if services, err := d.Store.ListServices(ctx); err == nil {
		n := len(services)
		status.Services = &n
	}
	return status
}

func checkCatalog(d deps.Deps) componentStatus {
	if d.Catalog == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}

	state := d.Catalog.State()
	runs := state.Runs
	status := componentStatus{
		OK:      state.LastError == "",
		Source:  state.Source,
		Reloads: &runs,
		Last:    "never",
		Error:   state.LastError,
		Mode:    "file",
	}
	if !state.LastReload.IsZero() {
		status.Last = state.LastReload.UTC().Format(time.RFC3339)
	}
	return status
}
