// Package request assigns each incoming request a stable identifier so log
// lines and error reports can be correlated across the service.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"guestlist/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// Middleware reuses the caller-supplied X-Request-ID when present, otherwise
// generates one, and stores it in the context and response headers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
