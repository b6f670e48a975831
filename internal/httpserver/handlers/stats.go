package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
)

// Stats returns the board summary: service counts per status and the number
// of reports received in the last 24 hours.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Tracker.Stats(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
