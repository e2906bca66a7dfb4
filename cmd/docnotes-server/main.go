package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/docnotes/docnotes/internal/config"
	"github.com/docnotes/docnotes/internal/domain/appointment"
	"github.com/docnotes/docnotes/internal/domain/auditlog"
	"github.com/docnotes/docnotes/internal/domain/dashboard"
	"github.com/docnotes/docnotes/internal/domain/document"
	"github.com/docnotes/docnotes/internal/domain/export"
	"github.com/docnotes/docnotes/internal/domain/identity"
	"github.com/docnotes/docnotes/internal/domain/medicalrecord"
	"github.com/docnotes/docnotes/internal/domain/patient"
	"github.com/docnotes/docnotes/internal/domain/sharelink"
	"github.com/docnotes/docnotes/internal/platform/audit"
	"github.com/docnotes/docnotes/internal/platform/auth"
	"github.com/docnotes/docnotes/internal/platform/blobstore"
	"github.com/docnotes/docnotes/internal/platform/db"
	"github.com/docnotes/docnotes/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docnotes-server",
		Short: "DocNotes clinical records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
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

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Object storage
	blobs, err := blobstore.NewS3Store(ctx, blobstore.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	// Repositories
	userRepo := identity.NewUserRepoPG(pool)
	sessionRepo := identity.NewSessionRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	recordRepo := medicalrecord.NewRepoPG(pool)
	apptRepo := appointment.NewRepoPG(pool)
	docRepo := document.NewRepoPG(pool)
	linkRepo := sharelink.NewRepoPG(pool)
	auditRepo := auditlog.NewRepoPG(pool)

	// Audit sink
	sink := audit.NewSink(auditRepo, logger)
	defer sink.Flush()

	// Services
	identitySvc := identity.NewService(userRepo, sessionRepo, time.Duration(cfg.SessionTTLHours)*time.Hour)
	patientSvc := patient.NewService(patientRepo)
	recordSvc := medicalrecord.NewService(recordRepo, patientRepo)
	apptSvc := appointment.NewService(apptRepo, patientRepo)
	docSvc := document.NewService(docRepo, patientRepo, blobs, logger)
	exportSvc := export.NewService(patientRepo, recordRepo, userRepo)
	linkSvc := sharelink.NewService(linkRepo, db.PoolRunner{Pool: pool}, exportSvc, docSvc, cfg.WebURL)
	dashSvc := dashboard.NewService(patientRepo, recordRepo, apptRepo)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.BodyLimit("10M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Liveness plus a DB ping for readiness.
	e.GET("/healthz", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Route groups. Session resolution guards everything except registration,
	// login, and public share redemption.
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	public := apiV1.Group("")
	authed := apiV1.Group("", auth.SessionMiddleware(identitySvc))
	admin := apiV1.Group("", auth.SessionMiddleware(identitySvc), auth.RequireRole(auth.RoleAdmin))

	// Handlers
	identity.NewHandler(identitySvc, sink).RegisterRoutes(public, authed, admin)
	patient.NewHandler(patientSvc, sink).RegisterRoutes(authed)
	medicalrecord.NewHandler(recordSvc, sink).RegisterRoutes(authed)
	appointment.NewHandler(apptSvc, sink).RegisterRoutes(authed)
	document.NewHandler(docSvc, sink).RegisterRoutes(authed)
	sharelink.NewHandler(linkSvc, sink).RegisterRoutes(public, authed)
	export.NewHandler(exportSvc, sink).RegisterRoutes(authed)
	dashboard.NewHandler(dashSvc).RegisterRoutes(authed)
	auditlog.NewHandler(auditRepo).RegisterRoutes(admin)

	// Serve with graceful shutdown.
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hourly session cleanup.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-shutdownCtx.Done():
				return
			case <-ticker.C:
				if n, err := sessionRepo.DeleteExpired(shutdownCtx, time.Now()); err != nil {
					logger.Warn().Err(err).Msg("session cleanup failed")
				} else if n > 0 {
					logger.Debug().Int64("deleted", n).Msg("expired sessions pruned")
				}
			}
		}
	}()

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	// Let in-flight audit writes land before the pool closes.
	sink.Flush()
	return nil
}
