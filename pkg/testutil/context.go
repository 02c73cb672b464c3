package testutil

import (
	"net/http"

	"idreclaim/internal/platform/middleware"
)

// WithUserID adds a user ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithUserID(req *http.Request, userID string) *http.Request {
	if userID == "" {
		return req
	}
	ctx := middleware.WithUserID(req.Context(), userID)
	return req.WithContext(ctx)
}
