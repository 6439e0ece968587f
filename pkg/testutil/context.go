package testutil

import (
	"net/http"
	"time"

	"guestlist/pkg/requestcontext"
)

// WithAdminToken sets the admin token header on the request.
func WithAdminToken(req *http.Request, token string) *http.Request {
	req.Header.Set("X-Admin-Token", token)
	return req
}

// WithRequestTime pins the request-scoped clock, so handlers that stamp
// timestamps produce deterministic values.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithRequestID sets a known request ID on the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
