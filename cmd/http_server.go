package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/clinic-access/internal"
	"github.com/frahmantamala/clinic-access/internal/accessrequest"
	requestpg "github.com/frahmantamala/clinic-access/internal/accessrequest/postgres"
	"github.com/frahmantamala/clinic-access/internal/auth"
	authpg "github.com/frahmantamala/clinic-access/internal/auth/postgres"
	"github.com/frahmantamala/clinic-access/internal/core/events"
	"github.com/frahmantamala/clinic-access/internal/permission"
	permissionpg "github.com/frahmantamala/clinic-access/internal/permission/postgres"
	"github.com/frahmantamala/clinic-access/internal/transport/rest"
	"github.com/frahmantamala/clinic-access/internal/user"
	userpg "github.com/frahmantamala/clinic-access/internal/user/postgres"
	"github.com/frahmantamala/clinic-access/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config         *internal.Config
	DB             *sqlx.DB
	Router         *chi.Mux
	Logger         *slog.Logger
	AuthHandler    *auth.Handler
	UserHandler    *user.Handler
	PermHandler    *permission.Handler
	RequestHandler *accessrequest.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.AuthHandler, deps.UserHandler, deps.PermHandler, deps.RequestHandler, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the pgx connection pool opened above
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(log)
	registerEventConsumers(eventBus, log)

	policy := permission.DefaultPolicy()

	userRepo := userpg.NewRepository(gormDB)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	grantRepo := permissionpg.NewGrantRepository(gormDB)
	permService := permission.NewService(grantRepo, userService, policy, nil, eventBus, log)
	permHandler := permission.NewHandler(permService)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authRepo := authpg.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen)

	// the cache resolves identities through the auth service and effective
	// sets through the permission service, so it is wired in last
	sessionCache := permission.NewCache(authService, permService, policy, log)
	permService.AttachCache(sessionCache)
	authService.AttachSessionCache(sessionCache)

	authHandler := auth.NewHandler(authService)

	requestRepo := requestpg.NewRequestRepository(gormDB)
	requestService := accessrequest.NewService(requestRepo, permService, eventBus, log)
	requestHandler := accessrequest.NewHandler(requestService)

	return &Dependencies{
		Config:         config,
		Logger:         log,
		DB:             db,
		Router:         chi.NewRouter(),
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		PermHandler:    permHandler,
		RequestHandler: requestHandler,
	}, nil
}

// registerEventConsumers attaches the audit and notification side channels.
// Both are log-backed sinks; the bus keeps them off the request path.
func registerEventConsumers(bus *events.EventBus, log *slog.Logger) {
	bus.Subscribe(events.EventTypeRequestReviewed, func(ctx context.Context, event events.Event) error {
		log.Info("audit",
			"action", events.AuditActionRequestReviewed,
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	bus.Subscribe(events.EventTypeGrantCreated, func(ctx context.Context, event events.Event) error {
		log.Info("audit",
			"action", "PERMISSION_GRANT_CREATED",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	bus.Subscribe(events.EventTypeRequesterNotified, func(ctx context.Context, event events.Event) error {
		log.Info("notification dispatched",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
