package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statusboard/internal/httpserver/handlers"
)

func init() { Register("reports", Public, registerReports) }

func registerReports(r chi.Router, d deps.Deps) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/", handlers.ListReports(d))
		r.Post("/", handlers.SubmitReport(d))
	})
}
