package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ParseHostNoPort strips an optional port from "ip:port", "[v6]:port" or
// "host:port". Inputs without a port are returned unchanged.
func ParseHostNoPort(s string) string {
	if s == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return s
}

// parseAddr parses an address that may carry a port or brackets. Zones are
// dropped and IPv4-mapped addresses are unmapped, so "::ffff:10.0.0.1"
// matches 10.0.0.0/8.
func parseAddr(s string) (netip.Addr, bool) {
	s = strings.Trim(ParseHostNoPort(strings.TrimSpace(s)), "[]")
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap().WithZone(""), true
}

// proxyHeaders are read in order when the proxy is trusted. For lists such as
// X-Forwarded-For only the left-most entry counts.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// ClientAddr resolves the caller address. With trustProxy, the first proxy
// header holding a valid address wins; unparsable values are skipped.
// Otherwise only RemoteAddr is used.
func ClientAddr(r *http.Request, trustProxy bool) (netip.Addr, bool) {
	if trustProxy {
		for _, h := range proxyHeaders {
			v := r.Header.Get(h)
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = v[:i]
			}
			if addr, ok := parseAddr(v); ok {
				return addr, true
			}
		}
	}
	return parseAddr(r.RemoteAddr)
}

// ClientIP is ClientAddr as a string, for logs. An unparsable RemoteAddr is
// returned without its port.
func ClientIP(r *http.Request, trustProxy bool) string {
	if addr, ok := ClientAddr(r, trustProxy); ok {
		return addr.String()
	}
	return ParseHostNoPort(r.RemoteAddr)
}

// IPMatcher matches addresses against a list of prefixes. Plain IPs are
// stored as single-address prefixes.
type IPMatcher struct {
	prefixes []netip.Prefix
	invalid  []string
}

func NewIPMatcher(list []string) *IPMatcher {
	m := &IPMatcher{}
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			if p.Addr().Is4In6() && p.Bits() >= 96 {
				p = netip.PrefixFrom(p.Addr().Unmap(), p.Bits()-96)
			}
			m.prefixes = append(m.prefixes, p.Masked())
			continue
		}
		if addr, ok := parseAddr(s); ok {
			m.prefixes = append(m.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		m.invalid = append(m.invalid, s)
	}
	return m
}

func (m *IPMatcher) IsEmpty() bool { return len(m.prefixes) == 0 }

// Len is the number of usable rules.
func (m *IPMatcher) Len() int { return len(m.prefixes) }

// Invalid lists the entries that were neither an IP nor a CIDR.
func (m *IPMatcher) Invalid() []string { return m.invalid }

// Allow reports whether ipStr parses and falls in one of the prefixes.
func (m *IPMatcher) Allow(ipStr string) bool {
	addr, ok := parseAddr(ipStr)
	return ok && m.AllowAddr(addr)
}

func (m *IPMatcher) AllowAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range m.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
