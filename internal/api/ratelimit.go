package api

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/rifty/internal/api/response"
)

var errRateLimited = errors.New("too many collection changes, slow down")

// throttle rejects requests once the shared token bucket is empty.
func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.logger.Warn("rate limited", "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			response.TooManyRequests(w, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}
