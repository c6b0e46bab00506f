package testutil

import (
	"net/http"

	id "workcheck/pkg/domain"
	"workcheck/pkg/requestcontext"
)

// WithUser adds an authenticated user to the request context, simulating what
// the auth middleware would do. Role defaults to "user" when empty.
func WithUser(req *http.Request, userID id.UserID, role string) *http.Request {
	if role == "" {
		role = "user"
	}
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithUserRole(ctx, role)
	return req.WithContext(ctx)
}
