package server

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/netip"

	"github.com/dddabtc/winremote-mcp/internal/errors"
)

// withAllowlist rejects requests whose source address is outside the
// configured prefixes. An empty allowlist admits everyone. The health
// endpoint is exempt so load checks keep working when the list is tight.
func (s *Server) withAllowlist(next http.Handler) http.Handler {
	if len(s.allowlist) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		addr, err := netip.ParseAddr(host)
		if err != nil || !s.allowed(addr) {
			s.log.Warn("request from disallowed address", "remote", r.RemoteAddr, "path", r.URL.Path)
			writeError(w, http.StatusForbidden, errors.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowed(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range s.allowlist {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// withAuth checks the X-Auth-Key header when an auth key is configured.
// No configured key means open access, which is the expected mode for a
// loopback-only deployment.
func (s *Server) withAuth(next http.Handler) http.Handler {
	key := s.cfg.Server.AuthKey
	if key == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get("X-Auth-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			s.log.Warn("rejected request with bad auth key", "remote", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, errors.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
