package middleware

import (
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger emits one structured access-log line per request, carrying
// the active trace and span ids so logs can be joined with telemetry.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics := httpsnoop.CaptureMetrics(next, w, r)
		duration := metrics.Duration
		if duration == 0 {
			duration = time.Since(start)
		}

		spanContext := trace.SpanFromContext(r.Context()).SpanContext()

		logrus.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     metrics.Code,
			"duration":   duration.String(),
			"request_id": w.Header().Get("X-Request-ID"),
			"trace_id":   spanContext.TraceID().String(),
			"span_id":    spanContext.SpanID().String(),
		}).Info("request")
	})
}
