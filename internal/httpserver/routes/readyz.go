package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statusboard/internal/httpserver/handlers"
)

func init() { Register("readyz", Restricted, registerReadyz) }

func registerReadyz(r chi.Router, d deps.Deps) {
	r.Get("/readyz", handlers.Readyz(d))
}
