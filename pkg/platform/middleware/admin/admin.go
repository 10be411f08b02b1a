// Package admin guards routes with the role-based policy in internal/authz.
package admin

import (
	"log/slog"
	"net/http"

	request "casevault/pkg/platform/middleware/request"
	"casevault/pkg/requestcontext"
)

// Enforcer decides whether a role may call method on path.
type Enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

// RequirePolicy rejects callers whose role is not granted the route.
// Must run after auth.RequireAuth.
func RequirePolicy(enforcer Enforcer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role := requestcontext.Role(ctx)

			allowed, err := enforcer.Enforce(role, r.URL.Path, r.Method)
			if err != nil {
				logger.ErrorContext(ctx, "policy evaluation failed",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal_error"}`))
				return
			}
			if !allowed {
				logger.WarnContext(ctx, "forbidden - role lacks permission",
					"role", role,
					"path", r.URL.Path,
					"user_id", requestcontext.UserID(ctx).String(),
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"insufficient role for this route"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
