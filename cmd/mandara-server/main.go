package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/config"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/exchange"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/problem"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/registry"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/synthesis"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/auth"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/db"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhirclient"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/metrics"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/middleware"
	"github.com/Keerthivasan-cpu/mandara-connect/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "mandara-server",
		Short:        "NAMASTE / ICD-11 dual-coding server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(synthesizeCmd())
	rootCmd.AddCommand(pushCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger writes JSON to stdout, or a console format in development.
func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	return db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
}

// newPusher returns nil when no receiver is configured.
func newPusher(cfg *config.Config, logger zerolog.Logger) (*fhirclient.Client, error) {
	if cfg.FHIRPushURL == "" {
		return nil, nil
	}
	return fhirclient.New(fhirclient.Config{
		BaseURL:     cfg.FHIRPushURL,
		Timeout:     cfg.FHIRPushTimeout,
		RetryCount:  cfg.FHIRPushRetries,
		BearerToken: cfg.FHIRPushToken,
	}, logger)
}

func jwtConfig(cfg *config.Config) auth.JWTConfig {
	return auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		SigningKey: []byte(cfg.AuthSigningKey),
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrations.FS).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrations.FS).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	})

	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := openPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	pusher, err := newPusher(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure FHIR push client")
	}

	e := newServer(cfg, pool, pusher, logger)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires middleware and every domain handler. pool may be nil in
// tests; pusher may be nil when no receiver is configured.
func newServer(cfg *config.Config, pool *pgxpool.Pool, pusher *fhirclient.Client, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.RequestIDHeader, db.ClinicHeader},
		ExposeHeaders: []string{synthesis.DanglingReferencesHeader, synthesis.DataQualityHeader, problem.DataQualityHeader, echo.HeaderContentDisposition},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}
	e.GET("/metrics", metrics.Handler())

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 || rateLimitCfg.BurstSize <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	var authMW echo.MiddlewareFunc
	if cfg.IsDev() {
		authMW = auth.DevAuthMiddleware(jwtConfig(cfg), cfg.DefaultClinic)
	} else {
		authMW = auth.JWTMiddleware(jwtConfig(cfg))
	}

	var recorder middleware.AuditRecorder
	if pool != nil {
		recorder = middleware.NewPGAuditRecorder(pool)
	}

	// The clinic must be resolved before rate limiting keys on it.
	scoped := []echo.MiddlewareFunc{
		authMW,
		db.ClinicMiddleware(pool, cfg.DefaultClinic),
		middleware.RateLimit(rateLimitCfg),
		middleware.Audit(logger, recorder),
	}
	apiV1 := e.Group("/api/v1", scoped...)
	fhirGroup := e.Group("/fhir", scoped...)

	registrySvc := registry.NewService(registry.NewSourceRepoPG(pool), registry.NewTargetRepoPG(pool))
	registry.NewHandler(registrySvc).RegisterRoutes(apiV1, fhirGroup)

	problemSvc := problem.NewService(problem.NewRepoPG(pool))
	problem.NewHandler(problemSvc, logger).RegisterRoutes(apiV1)

	exchangeSvc := exchange.NewService(exchange.NewRepoPG(pool))
	exchange.NewHandler(exchangeSvc, logger).RegisterRoutes(apiV1)

	synthSvc := synthesis.NewService(registrySvc, problemSvc, synthesis.New())
	var p synthesis.Pusher
	if pusher != nil {
		p = pusher
	}
	synthesis.NewHandler(synthSvc, p, logger).RegisterRoutes(fhirGroup)

	return e
}
