package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/antscrawling/cpfsim/internal/infrastructure/metrics"
)

// Metrics returns a middleware that records HTTP metrics into m.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			// Wrap response writer to capture status code
			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			path := normalizePath(r.URL.Path)

			m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

const runsPrefix = "/api/v1/runs/"

// normalizePath normalizes URL paths to avoid high cardinality.
// /api/v1/runs/01HZY.../rows -> /api/v1/runs/:id/rows
func normalizePath(path string) string {
	rest, ok := strings.CutPrefix(path, runsPrefix)
	if !ok || rest == "" || rest[0] == '/' {
		return path
	}

	suffix := ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		suffix = rest[i:]
	}

	return runsPrefix + ":id" + suffix
}
