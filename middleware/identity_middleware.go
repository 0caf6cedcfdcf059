package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/praxislegal/legal-ai-gateway/utils"
)

// RequestID assigns each request a unique ID, honoring one supplied by
// the caller in X-Request-ID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}

// Identity extracts the calling user from the X-User-ID header set by
// the upstream application layer. Authentication itself happens there;
// the gateway only needs an identity to attribute usage to.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			utils.WriteUnauthorized(w, "X-User-ID header required")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}
