package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statusboard/internal/httpserver/handlers"
)

func init() { Register("services", Public, registerServices) }

// /api/services/top is matched before the {idOrSlug} pattern, so a service
// whose id is "top" is only reachable through the list endpoint.
func registerServices(r chi.Router, d deps.Deps) {
	r.Route("/api/services", func(r chi.Router) {
		r.Get("/", handlers.ListServices(d))
		r.Post("/", handlers.RegisterService(d))
		r.Get("/top", handlers.TopServices(d))
		r.Get("/{idOrSlug}", handlers.GetService(d))
	})
}
