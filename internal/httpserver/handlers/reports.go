package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statusboard/internal/tracker"
)

// ListReports returns reports filtered by ?serviceId=&windowHours=&limit=.
func ListReports(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := intParam(r, "windowHours")
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		limit, err := intParam(r, "limit")
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		reports, err := d.Tracker.Reports(r.Context(), tracker.ReportQuery{
			ServiceID:   r.URL.Query().Get("serviceId"),
			WindowHours: window,
			Limit:       limit,
		})
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, reports)
	}
}

// SubmitReport records a problem report from a JSON body.
func SubmitReport(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.SubmitInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		report, err := d.Tracker.Submit(r.Context(), in)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, report)
	}
}
