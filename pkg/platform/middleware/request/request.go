// Package request provides request ID correlation middleware.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"workcheck/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// RequestID assigns a correlation ID to each request, honoring an inbound
// X-Request-ID header so upstream proxies can thread their own IDs through.
// The ID is stored in context and echoed on the response.
func RequestID(next http.Handler) http.Handler {
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

// GetRequestID retrieves the correlation ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
