package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statusboard/internal/httpserver/handlers"
)

func init() { Register("metrics", Ops, registerMetrics) }

func registerMetrics(r chi.Router, d deps.Deps) {
	r.Method(http.MethodGet, "/metrics", handlers.Metrics(d))
}
