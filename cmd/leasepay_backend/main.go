package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/leasepay/leasepay_backend/internal/adapters/gateway/stripegw"
	"github.com/leasepay/leasepay_backend/internal/core/services"
	"github.com/leasepay/leasepay_backend/internal/handlers"
	"github.com/leasepay/leasepay_backend/internal/middleware"
	"github.com/leasepay/leasepay_backend/internal/platform/config"
	"github.com/leasepay/leasepay_backend/internal/repositories/database/pgsql"
	"github.com/leasepay/leasepay_backend/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title LeasePay Backend API
// @version 1.0
// @description Payment processing and double-entry ledger service for property management.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		os.Exit(1)
	}

	// Wire repositories, the Stripe gateway adapter, and the services
	repos := pgsql.NewRepositoryProvider(dbPool)
	gateway := stripegw.NewStripeGateway(stripegw.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	})
	svcs := services.NewContainer(&repos, gateway, cfg.DefaultCurrency, cfg.GatewayTimeout)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, svcs)

	// Background sweep for payments stuck in PROCESSING
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.ReconcileInterval > 0 {
		go runReconcileSweep(sweepCtx, svcs, cfg, logger)
	}

	// Stop the sweep promptly on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		stopSweep()
	}()

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations before the server starts.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// Open a temporary standard sql.DB connection for migrations,
	// using the pgx stdlib driver to stay compatible with the main pool
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// runReconcileSweep periodically syncs stale PROCESSING payments against the
// gateway until ctx is cancelled.
func runReconcileSweep(ctx context.Context, svcs *services.Container, cfg *config.Config, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.ReconcileInterval)
	defer ticker.Stop()

	logger.Info("Reconciliation sweep started",
		slog.Duration("interval", cfg.ReconcileInterval),
		slog.Duration("max_age", cfg.ReconcileMaxAge))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reconciliation sweep stopped")
			return
		case <-ticker.C:
			examined, err := svcs.Payment.ReconcilePendingPayments(ctx, cfg.ReconcileMaxAge)
			if err != nil {
				logger.Error("Reconciliation sweep failed", slog.String("error", err.Error()))
				continue
			}
			if examined > 0 {
				logger.Info("Reconciliation sweep completed", slog.Int("examined", examined))
			}
		}
	}
}
