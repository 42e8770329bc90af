package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/elysion-gg/elysion-bank/internal/adapters/database/pgsql"
	"github.com/elysion-gg/elysion-bank/internal/adapters/database/sqlite"
	"github.com/elysion-gg/elysion-bank/internal/adapters/platform"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
	portssvc "github.com/elysion-gg/elysion-bank/internal/core/ports/services"
	"github.com/elysion-gg/elysion-bank/internal/core/services"
	"github.com/elysion-gg/elysion-bank/internal/handlers"
	"github.com/elysion-gg/elysion-bank/internal/middleware"
	"github.com/elysion-gg/elysion-bank/internal/platform/config"
	"github.com/elysion-gg/elysion-bank/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStorage()

	if err := services.Seed(ctx, repos.SalaryRoles); err != nil {
		logger.Error("Failed to seed salary roles", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gateway := platform.NewGatewayClient(cfg.GatewayBaseURL, cfg.BotTokenSecret)

	ledgerService := services.NewLedgerService(repos.Users, repos.Transactions, repos.SalaryClaims, repos.Tx, cfg.StartingBalance)
	salaryConfigService := services.NewSalaryConfigService(repos.SalaryRoles)
	voiceManager := services.NewVoiceManager(repos.VoiceChannels, gateway, services.VoiceManagerConfig{
		GracePeriod:   cfg.VoiceGracePeriod,
		SweepInterval: cfg.VoiceSweepEvery,
		UserLimit:     cfg.VoiceUserLimit,
	}, logger)

	serviceContainer := &portssvc.ServiceContainer{
		Ledger:       ledgerService,
		SalaryConfig: salaryConfigService,
		Voice:        voiceManager,
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		// Background work logs through the same request-logger plumbing.
		workerCtx := middleware.WithLogger(gctx, logger.With(slog.String("component", "voice_manager")))
		voiceManager.Run(workerCtx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped.")
}

// openStorage builds the repository set for the configured driver. Postgres
// schemas are managed with versioned migrations; the embedded sqlite backend
// bootstraps its own schema on startup.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
			database.ClosePgxPool(pool)
			return nil, nil, err
		}
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil

	case config.DriverSqlite:
		db, err := database.NewSqliteDB(cfg.SqlitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.Bootstrap(ctx, db); err != nil {
			database.CloseSqliteDB(db)
			return nil, nil, err
		}
		return sqlite.NewRepositoryProvider(db), func() { database.CloseSqliteDB(db) }, nil
	}
	return nil, nil, errors.New("unknown storage driver " + cfg.StorageDriver)
}

// runMigrations applies all pending "up" migrations over a temporary
// database/sql connection, using the pgx stdlib driver for compatibility
// with the main pool.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
