package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statusboard/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// Access is the guard RegisterAll puts in front of a registrar.
type Access int

const (
	Public     Access = iota // board API and liveness
	Restricted               // client IP must match AllowedCIDRS
	Ops                      // Restricted plus a Host from AllowedHosts
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Restricted:
		return "restricted"
	case Ops:
		return "ops"
	}
	return fmt.Sprintf("access(%d)", int(a))
}

// Route describes one registration.
type Route struct {
	Name   string
	Access Access
}

type entry struct {
	Route
	reg Registrar
	mws []Middleware
}

var registry []entry

// Register adds a named registrar with optional extra middlewares. Names are
// unique; registering one twice panics at init.
func Register(name string, access Access, reg Registrar, mws ...Middleware) {
	for _, e := range registry {
		if e.Name == name {
			panic(fmt.Sprintf("routes: %q registered twice", name))
		}
	}
	registry = append(registry, entry{Route: Route{Name: name, Access: access}, reg: reg, mws: mws})
}

// Routes lists the registrations in init order.
func Routes() []Route {
	out := make([]Route, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.Route)
	}
	return out
}

func guard(a Access, d deps.Deps) []Middleware {
	switch a {
	case Restricted:
		return []Middleware{mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)}
	case Ops:
		return []Middleware{
			mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
			mw.EnforceHost(d.AllowedHosts, d.Logger),
		}
	}
	return nil
}

// RegisterAll mounts every registrar on r. Called once from NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		mws := append(guard(e.Access, d), e.mws...)
		if len(mws) == 0 {
			e.reg(r, d)
			continue
		}
		e.reg(r.With(mws...), d)
	}
}
