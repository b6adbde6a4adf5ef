package rbac

import (
	"log/slog"
	"net/http"

	"github.com/chronicle-cms/chronicle/internal/platform/httpx"
	"github.com/chronicle-cms/chronicle/internal/shared"
)

// Middleware enforces declared permission requirements before an
// operation reaches its handler.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAny allows the request through when the principal satisfies at
// least one of the declared requirements, evaluated in declaration
// order. An empty requirement list marks the operation public: no
// authorization check is performed at all. Requests without an
// authenticated principal are rejected as unauthenticated before any
// permission is evaluated; a denied request never learns which
// permission would have sufficed.
func (m Middleware) RequireAny(reqs ...Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(reqs) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := shared.PrincipalID(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			for _, req := range reqs {
				granted, err := m.Service.HasPermission(r.Context(), userID, req.Resource, req.Action)
				if err != nil {
					if m.Logger != nil {
						m.Logger.Error("rbac require any", slog.Any("error", err))
					}
					httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
					return
				}
				if granted {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "not permitted")
		})
	}
}
