package middleware

import (
	"net/http"

	"github.com/frahmantamala/clinic-access/pkg/logger"

	"github.com/google/uuid"
)

// RequestID propagates the caller's X-Trace-ID, minting one when absent, and
// binds a trace-scoped logger into the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)

		// echo the trace id so clients can correlate
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
