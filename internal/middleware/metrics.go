package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pwannenmacher/criteria-settings/internal/metrics"
)

// Metrics instruments requests. It must wrap the ServeMux directly so the
// matched route pattern is visible after the request has been served.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			written := rw.bytesWritten

			next.ServeHTTP(rw, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			m.HTTPResponseSize.WithLabelValues(r.Method, route).Observe(float64(rw.bytesWritten - written))
		})
	}
}
