package middleware

import (
	"net/http"

	"github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/pkg/logger"
)

// UserContext tags the request logger with the authenticated caller.
// It must run after the auth middleware has stored the principal.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := internal.PrincipalFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "userID", p.UserID, "nik", p.NIK, "role", string(p.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
