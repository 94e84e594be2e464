package auth

import (
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/transport"
	"github.com/frahmantamala/vehicle-permit/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	result, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	logger.From(r.Context()).Info("user logged in", "user_id", result.User.ID, "role", result.User.Role)
	h.WriteJSON(w, http.StatusOK, result)
}

// AuthMiddleware verifies the bearer token and stores the principal in the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, r, errors.ErrTokenInvalidOrExpired)
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.WriteAppError(w, r, err)
			return
		}

		ctx := errors.ContextWithPrincipal(r.Context(), claims.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// QueryTokenMiddleware accepts the token from ?token= for clients that cannot set headers.
func (h *Handler) QueryTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if t := r.URL.Query().Get("token"); t != "" {
				r.Header.Set("Authorization", "Bearer "+t)
			}
		}
		h.AuthMiddleware(next).ServeHTTP(w, r)
	})
}
