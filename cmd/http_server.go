package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/vehicle-permit/api"
	"github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/auth"
	"github.com/frahmantamala/vehicle-permit/internal/core/events"
	"github.com/frahmantamala/vehicle-permit/internal/export"
	"github.com/frahmantamala/vehicle-permit/internal/notification"
	"github.com/frahmantamala/vehicle-permit/internal/permit"
	permitPostgres "github.com/frahmantamala/vehicle-permit/internal/permit/postgres"
	"github.com/frahmantamala/vehicle-permit/internal/pushgateway"
	"github.com/frahmantamala/vehicle-permit/internal/realtime"
	"github.com/frahmantamala/vehicle-permit/internal/transport/rest"
	"github.com/frahmantamala/vehicle-permit/internal/transport/swagger"
	"github.com/frahmantamala/vehicle-permit/internal/user"
	userPostgres "github.com/frahmantamala/vehicle-permit/internal/user/postgres"
	"github.com/frahmantamala/vehicle-permit/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

const shutdownTimeout = 30 * time.Second

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	Logger   *slog.Logger
	EventBus *events.EventBus
	PushPool *pushgateway.Pool
	Hub      *realtime.Hub
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go deps.Hub.Run(hubCtx)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			stopHub()
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error("Server shutdown error", "error", err)
	}
	stopHub()

	// decisions made just before shutdown still get their push
	if err := deps.EventBus.Wait(ctx); err != nil {
		deps.Logger.Warn("event handlers still running at shutdown", "error", err)
	}
	if err := deps.PushPool.Shutdown(ctx); err != nil {
		deps.Logger.Warn("push queue not fully drained", "error", err)
	}
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	if _, err := swagger.Load(context.Background(), api.OpenAPI); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	eventBus := events.NewEventBus(lg)

	// users and sessions
	userRepo := userPostgres.NewUserRepository(gdb)
	userService := user.NewService(userRepo)
	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, auth.TokenLifetime)
	authService := auth.NewService(userRepo, tokenGen)
	rbac := auth.NewRBACAuthorization(auth.NewPermissionChecker(), lg)

	// permits
	permitRepo := permitPostgres.NewPermitRepository(gdb)
	reportRepo := permitPostgres.NewReportRepository(db)
	policy := auth.NewSubmissionPolicy(config.Security.SelfServiceOnly)
	workflow := permit.NewService(permitRepo, policy, eventBus, lg)
	query := permit.NewQueryService(permitRepo, reportRepo)

	// exports
	exportService := export.NewService(query, afero.NewOsFs(), config.Export, lg)

	// notifications
	sender := pushgateway.NewSender(config.Notification.Adapter, pushgateway.FCMConfig{
		PushURL:   config.Notification.PushURL,
		ServerKey: config.Notification.ServerKey,
		Timeout:   config.Notification.Timeout,
	}, lg)
	notificationService := notification.NewService(userService, sender, lg)
	pushPool := pushgateway.NewPool(pushgateway.PoolConfig{
		MaxWorkers: config.Notification.MaxWorkers,
		QueueSize:  config.Notification.QueueSize,
	}, notificationService.Deliver, lg)
	notification.NewEventHandler(userService, pushPool, lg).RegisterEventHandlers(eventBus)

	// live updates
	hub := realtime.NewHub(lg)
	realtime.NewEventHandler(hub, lg).RegisterEventHandlers(eventBus)

	health := rest.NewHealthHandler(map[string]rest.Check{
		"postgres": db.PingContext,
	})

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Auth:           auth.NewHandler(authService),
		RBAC:           rbac,
		User:           user.NewHandler(userService),
		Permit:         permit.NewHandler(workflow, query),
		Export:         export.NewHandler(exportService),
		Notification:   notification.NewHandler(notificationService),
		Realtime:       realtime.NewHandler(hub, realtime.NewUpgrader(config.Server.Origins())),
		Health:         health,
		Downloads:      exportService.FileServer(),
		ExportPrefix:   config.Export.URLPrefix,
		OpenAPI:        api.OpenAPI,
		AllowedOrigins: config.Server.Origins(),
	}, lg)

	return &Dependencies{
		Config:   config,
		DB:       db,
		Router:   router,
		Logger:   lg,
		EventBus: eventBus,
		PushPool: pushPool,
		Hub:      hub,
	}, nil
}
