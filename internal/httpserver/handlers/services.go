package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
)

// ListServices returns every service, most reported first.
func ListServices(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := d.Tracker.List(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, services)
	}
}

// TopServices returns the most reported services (?limit=N).
func TopServices(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := intParam(r, "limit")
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		services, err := d.Tracker.Top(r.Context(), limit)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, services)
	}
}

// GetService resolves a service by id, normalized name or display name.
func GetService(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// chi matches on RawPath when set, leaving the parameter escaped.
		token := chi.URLParam(r, "idOrSlug")
		if r.URL.RawPath != "" {
			if unescaped, err := url.PathUnescape(token); err == nil {
				token = unescaped
			}
		}

		svc, err := d.Tracker.FindByNameOrSlug(r.Context(), token)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, svc)
	}
}

// RegisterService creates a service from a JSON body.
func RegisterService(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.RegisterInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		svc, err := d.Tracker.Register(r.Context(), in)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, svc)
	}
}
