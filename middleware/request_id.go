package middleware

import (
	"net/http"

	"weatherbot/appctx"
	"weatherbot/core"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an ID, reusing a well-formed incoming one
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !core.IsValidID(requestID) {
			requestID = core.NewID("req")
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(appctx.SetRequestID(r.Context(), requestID)))
	})
}
