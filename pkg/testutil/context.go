package testutil

import (
	"net/http"
	"time"

	id "casevault/pkg/domain"
	"casevault/pkg/requestcontext"
)

// WithAuth sets the caller identity and role on the request context, as the
// auth middleware would for a signed-in caller.
func WithAuth(req *http.Request, userID id.UserID, role string) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithToken attaches a token id and expiry, as needed by logout.
func WithToken(req *http.Request, jti string, expiresAt time.Time) *http.Request {
	return req.WithContext(requestcontext.WithToken(req.Context(), jti, expiresAt))
}
