package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openwork-hackathon/team-moltroulette/internal/metrics"
)

// statusWriter wraps http.ResponseWriter to capture status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Metrics returns middleware that records Prometheus metrics.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, path, strconv.Itoa(wrapped.status),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method, path,
		).Observe(duration)
	})
}

// normalizePath collapses id-bearing query routes so metrics cardinality
// stays bounded. Routes here are flat (/api/<name>), ids travel in query
// params or bodies, so the path itself is already low-cardinality; this only
// guards future parameterized routes.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/api/rooms/") && len(path) > len("/api/rooms/") {
		return "/api/rooms/:id"
	}
	return path
}
