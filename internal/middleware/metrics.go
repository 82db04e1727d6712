package middleware

import (
	"net/http"
	"time"

	"github.com/josh-kwaku/mobile-payments/internal/metrics"
)

// Metrics labels requests with the pattern the mux recorded on the
// *http.Request, so every middleware between it and the mux must pass the
// request through unchanged. It sits outside Recovery so panics are counted
// as 500s.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(r.Method, route, rec.status, time.Since(start))
		})
	}
}
