package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/stockpile-hq/stockpile/internal/metrics"
)

// Metrics records request counts and latencies by route pattern. It must
// wrap the mux directly: the mux sets r.Pattern on the request it receives.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)

		next.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(rw.statusCode)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}
