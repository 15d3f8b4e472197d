package main

import (
	"context"
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

	"github.com/wellchild/wellchild/internal/config"
	"github.com/wellchild/wellchild/internal/domain/findings"
	"github.com/wellchild/wellchild/internal/domain/growth"
	"github.com/wellchild/wellchild/internal/domain/refcurve"
	"github.com/wellchild/wellchild/internal/domain/visit"
	"github.com/wellchild/wellchild/internal/platform/chrono"
	"github.com/wellchild/wellchild/internal/platform/db"
	"github.com/wellchild/wellchild/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wellchild-server",
		Short: "Well-child visit timeline and growth analytics API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(clinicCmd())
	rootCmd.AddCommand(curvesCmd())

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

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
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

			migrator := db.NewMigrator(pool, dir)
			fmt.Printf("Running migrations on schema: %s\n", schema)

			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "clinic_default", "Target schema for migrations")
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
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

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", schema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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
	statusCmd.Flags().String("schema", "clinic_default", "Target schema for migrations")
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func clinicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinic",
		Short: "Manage clinic schemas",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new clinic schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			dir, _ := cmd.Flags().GetString("dir")
			if name == "" {
				return fmt.Errorf("--name is required")
			}

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

			fmt.Printf("Creating clinic schema: clinic_%s\n", name)
			if err := db.CreateClinicSchema(ctx, pool, name, dir); err != nil {
				return fmt.Errorf("create clinic schema: %w", err)
			}
			fmt.Println("Clinic schema created.")
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Clinic identifier (alphanumeric and underscore)")
	createCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(createCmd)

	return cmd
}

func curvesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curves",
		Short: "Inspect growth reference curve resources",
	}

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Parse a reference curve file and print the resolved series",
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, _ := cmd.Flags().GetString("metric")
			sex, _ := cmd.Flags().GetString("sex")
			birth, _ := cmd.Flags().GetString("birth-date")
			dir, _ := cmd.Flags().GetString("dir")

			m := refcurve.MetricKind(metric)
			if !m.Valid() {
				return fmt.Errorf("metric must be one of weight, length, head-circumference")
			}
			s := refcurve.Sex(sex)
			if !s.Valid() {
				return fmt.Errorf("sex must be M or F")
			}
			birthDate, err := chrono.ParseInstant(birth)
			if err != nil {
				return fmt.Errorf("invalid birth date %q", birth)
			}

			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			loader := refcurve.NewLoader(os.DirFS(dir), logger)
			series := loader.Load(m, s, birthDate)
			if len(series) == 0 {
				fmt.Println("No series resolved.")
				return nil
			}
			for _, sr := range series {
				fmt.Printf("%s (%d points)\n", sr.Label, len(sr.Points))
				for _, p := range sr.Points {
					fmt.Printf("  %s  %.2f\n", p.Instant.Format("2006-01-02"), p.Value)
				}
			}
			return nil
		},
	}
	previewCmd.Flags().String("metric", "weight", "Metric: weight, length, or head-circumference")
	previewCmd.Flags().String("sex", "M", "Sex: M or F")
	previewCmd.Flags().String("birth-date", "", "Birth date to anchor the age axis (e.g. 2024-01-01)")
	previewCmd.Flags().String("dir", "reference-data", "Directory containing curve resources")
	cmd.AddCommand(previewCmd)

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
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Clinic-ID"},
	}))

	// Clinic middleware
	e.Use(db.ClinicMiddleware(pool, cfg.DefaultClinic))

	// API group
	apiV1 := e.Group("/api/v1")

	// Rate limiting middleware
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Growth timeline and velocity
	measurementRepo := growth.NewMeasurementRepoPG(pool)
	perinatalRepo := growth.NewPerinatalRepoPG(pool)
	growthSvc := growth.NewService(measurementRepo, perinatalRepo, cfg.VelocityThresholdGPD, logger)
	growthHandler := growth.NewHandler(growthSvc)
	growthHandler.RegisterRoutes(apiV1)

	// Reference curves
	curveLoader := refcurve.NewLoader(os.DirFS(cfg.ReferenceDataDir), logger)
	curveHandler := refcurve.NewHandler(curveLoader)
	curveHandler.RegisterRoutes(apiV1)

	// Visit-type layouts
	visitHandler := visit.NewHandler()
	visitHandler.RegisterRoutes(apiV1)

	// Finding synthesis
	findingsHandler := findings.NewHandler(growthSvc)
	findingsHandler.RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
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
