package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/transport"
)

// RBACAuthorization guards routes by role capability alone.
type RBACAuthorization struct {
	*transport.BaseHandler
	authorizer internal.Authorizer
}

func NewRBACAuthorization(authorizer internal.Authorizer, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		authorizer:  authorizer,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, action internal.Action, resource internal.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ra.Actor(w, r)
		if !ok {
			return
		}

		if err := ra.authorizer.Authorize(actor, action, resource, internal.NoOwner); err != nil {
			ra.Logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"user_id", actor.ID,
				"role", actor.Role,
				"action", action,
				"resource", resource)
			ra.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) Middleware(action internal.Action, resource internal.Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, action, resource)
	}
}
