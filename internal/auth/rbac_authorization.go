package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/transport"
	"github.com/frahmantamala/vehicle-permit/internal/user"
)

type RBACAuthorization struct {
	*transport.BaseHandler
	checker PermissionChecker
	logger  *slog.Logger
}

func NewRBACAuthorization(checker PermissionChecker, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		checker:     checker,
		logger:      logger,
	}
}

// require builds a middleware admitting callers for which allow returns true.
func (ra *RBACAuthorization) require(action string, allow func(user.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				ra.logger.Warn("authorization check failed: principal not found in context")
				ra.WriteAppError(w, r, internal.ErrTokenInvalidOrExpired)
				return
			}

			if !allow(p.Role) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", p.UserID,
					"role", p.Role,
					"action", action)
				ra.WriteAppError(w, r, internal.ErrInsufficientPermissions)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireDecidePermit() func(http.Handler) http.Handler {
	return ra.require("decide_permit", ra.checker.CanDecidePermits)
}

func (ra *RBACAuthorization) RequireViewReports() func(http.Handler) http.Handler {
	return ra.require("view_reports", ra.checker.CanViewReports)
}

func (ra *RBACAuthorization) RequireExport() func(http.Handler) http.Handler {
	return ra.require("export", ra.checker.CanExport)
}

func (ra *RBACAuthorization) RequireSendNotifications() func(http.Handler) http.Handler {
	return ra.require("send_notifications", ra.checker.CanSendNotifications)
}
