package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/statusboard/internal/logger"
	"github.com/MrSnakeDoc/statusboard/internal/utils"
)

// AllowOnlyCIDRS allows only specific IPs/CIDRs. If the list is empty, it does NOT filter (passthrough).
// trustProxy should be true when running behind a trusted reverse proxy/tunnel (e.g., cloudflared).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	for _, bad := range m.Invalid() {
		log.Warn("AllowOnlyCIDRS: ignoring invalid rule", logger.String("rule", bad))
	}
	if m.IsEmpty() {
		if len(m.Invalid()) > 0 {
			log.Warn("AllowOnlyCIDRS: no usable rule, denying all")
			return func(http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusForbidden)
				})
			}
		}
		log.Debug("AllowOnlyCIDRS: empty matcher, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("AllowOnlyCIDRS: initialized with %d rules, trustProxy=%v", m.Len(), trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, ok := utils.ClientAddr(r, trustProxy)
			if !ok || !m.AllowAddr(addr) {
				log.Warn("ops request rejected",
					logger.String("reason", "ip"),
					logger.String("ip", utils.ClientIP(r, trustProxy)),
					logger.String("remote_addr", r.RemoteAddr),
					logger.String("path", r.URL.Path))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
