package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statusboard/internal/logger"
)

func TestRoutesRegistered(t *testing.T) {
	want := map[string]Access{
		"healthz":  Public,
		"services": Public,
		"reports":  Public,
		"stats":    Public,
		"readyz":   Restricted,
		"infra":    Ops,
		"metrics":  Ops,
		"reload":   Ops,
	}

	got := map[string]Access{}
	for _, r := range Routes() {
		got[r.Name] = r.Access
	}
	if len(got) != len(want) {
		t.Errorf("registered %d routes, want %d: %v", len(got), len(want), got)
	}
	for name, access := range want {
		a, ok := got[name]
		if !ok {
			t.Errorf("route %q not registered", name)
			continue
		}
		if a != access {
			t.Errorf("route %q access = %s, want %s", name, a, access)
		}
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a duplicate name")
		}
	}()
	Register("healthz", Public, func(chi.Router, deps.Deps) {})
}

func TestRegisterAllGuards(t *testing.T) {
	d := deps.Deps{
		Logger:       logger.Nop(),
		AllowedCIDRS: []string{"10.0.0.0/8"},
		AllowedHosts: []string{"ops.example.com"},
	}
	r := chi.NewRouter()
	RegisterAll(r, d)

	tests := []struct {
		name   string
		path   string
		remote string
		host   string
		want   int
	}{
		{"public from anywhere", "/healthz", "203.0.113.9:1", "board.example.com", http.StatusOK},
		{"restricted outside cidr", "/readyz", "203.0.113.9:1", "ops.example.com", http.StatusForbidden},
		{"ops outside cidr", "/infra", "203.0.113.9:1", "ops.example.com", http.StatusForbidden},
		{"ops wrong host", "/infra", "10.1.2.3:1", "board.example.com", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.RemoteAddr = tt.remote
			req.Host = tt.host
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAccessString(t *testing.T) {
	for a, want := range map[Access]string{Public: "public", Restricted: "restricted", Ops: "ops", Access(9): "access(9)"} {
		if got := a.String(); got != want {
			t.Errorf("Access(%d).String() = %q, want %q", int(a), got, want)
		}
	}
}
