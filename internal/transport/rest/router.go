package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/vehicle-permit/internal/auth"
	"github.com/frahmantamala/vehicle-permit/internal/export"
	"github.com/frahmantamala/vehicle-permit/internal/notification"
	"github.com/frahmantamala/vehicle-permit/internal/permit"
	"github.com/frahmantamala/vehicle-permit/internal/realtime"
	"github.com/frahmantamala/vehicle-permit/internal/transport/middleware"
	"github.com/frahmantamala/vehicle-permit/internal/transport/swagger"
	"github.com/frahmantamala/vehicle-permit/internal/user"
)

// Handlers groups everything RegisterAllRoutes mounts. Nil handlers are skipped.
type Handlers struct {
	Auth         *auth.Handler
	RBAC         *auth.RBACAuthorization
	User         *user.Handler
	Permit       *permit.Handler
	Export       *export.Handler
	Notification *notification.Handler
	Realtime     *realtime.Handler
	Health       *HealthHandler

	// Downloads serves generated export files under ExportPrefix.
	Downloads    http.Handler
	ExportPrefix string

	OpenAPI        []byte
	AllowedOrigins []string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, logger *slog.Logger) {
	router.Use(middleware.CORS(h.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if h.OpenAPI != nil {
		router.Get("/openapi.yml", swagger.SpecHandler(h.OpenAPI))
		router.Handle("/swagger/*", swagger.Handler())
	}

	if h.Downloads != nil {
		prefix := h.ExportPrefix
		if prefix == "" {
			prefix = "/exports"
		}
		router.Handle(prefix+"/*", http.StripPrefix(prefix, h.Downloads))
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Auth == nil {
			return
		}

		r.Post("/auth/login", h.Auth.Login)

		if h.Realtime != nil {
			r.With(h.Auth.QueryTokenMiddleware, middleware.UserContext).Get("/ws", h.Realtime.ServeWS)
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			if h.Permit != nil {
				pr.Route("/permits", func(er chi.Router) {
					er.Post("/", h.Permit.CreatePermit)
					er.Get("/", h.Permit.ListPermits)
					er.Get("/search", h.Permit.SearchPermits)
					er.Get("/range", h.Permit.ListPermitsByRange)
					er.Get("/{id}", h.Permit.GetPermit)

					er.Group(func(mr chi.Router) {
						mr.Use(h.RBAC.RequireDecidePermit())
						mr.Patch("/{id}/status", h.Permit.DecidePermit)
					})
				})

				pr.Group(func(rr chi.Router) {
					rr.Use(h.RBAC.RequireViewReports())
					rr.Get("/reports/summary", h.Permit.Summary)
				})
			}

			if h.Export != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(h.RBAC.RequireExport())
					ar.Post("/admin/export", h.Export.Export)
				})
			}

			if h.Notification != nil {
				pr.Group(func(nr chi.Router) {
					nr.Use(h.RBAC.RequireSendNotifications())
					nr.Post("/notifications/send", h.Notification.Send)
				})
				pr.Put("/notifications/token", h.Notification.UpdateToken)
			}
		})
	})
}
