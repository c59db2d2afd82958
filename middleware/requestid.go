package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID ensures each request carries a stable X-Request-ID. A
// client-provided id is propagated; otherwise a new UUIDv4 is generated.
// The id is echoed on the response so clients can quote it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		r.Header.Set("X-Request-ID", requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}
