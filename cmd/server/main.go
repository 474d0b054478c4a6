package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/storeradar/radar-service/config"
	_ "github.com/storeradar/radar-service/docs"
	"github.com/storeradar/radar-service/internal/catalog"
	"github.com/storeradar/radar-service/internal/database"
	"github.com/storeradar/radar-service/internal/engine"
	"github.com/storeradar/radar-service/internal/handlers"
	"github.com/storeradar/radar-service/internal/middleware"
	"github.com/storeradar/radar-service/internal/preference"
	"github.com/storeradar/radar-service/internal/session"
	"github.com/storeradar/radar-service/internal/telemetry"
)

// @title Radar Service API
// @version 1.0
// @description Store recommendation API: map sessions, ranked store markers and preference learning.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by the account service
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)
	log.Logger = *logger

	logger.Info().Str("catalog", cfg.Catalog.Source).Msg("Starting radar service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	if cfg.Database.URL != "" {
		if err := database.Connect(ctx, cfg.Database); err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close()
		logger.Info().Msg("Database connected")

		if cfg.Database.Migrate {
			if err := database.Migrate(ctx, database.Pool(), cfg.Catalog.Schema); err != nil {
				logger.Fatal().Err(err).Msg("Failed to migrate schema")
			}
		}
	}

	src, err := catalog.Open(cfg.Catalog, database.Pool())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open catalog")
	}
	recorder := buildPreferences(cfg, src)

	manager := session.NewManager(cfg.Session, src, recorder, cfg.Engine)
	go manager.Start(ctx)

	handlers.Init(manager, recorder, src)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit)
	go limiter.RunCleanup(ctx, 5*time.Minute)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(*logger))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("")
	api.Use(middleware.RateLimit(limiter))
	api.Use(middleware.Identity(cfg.Auth))
	handlers.RegisterRoutes(api)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	manager.Stop()
	cancel()

	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shutdown telemetry")
	}

	logger.Info().Msg("Server exited")
}

// buildPreferences returns the selection recorder, which is also the weight
// source used for ranking. Selections are kept in the database when one is
// configured. With the remote catalog, selections are forwarded to it and
// weights are read back from it, since it owns the user accounts.
func buildPreferences(cfg *config.Config, src catalog.Source) *preference.Recorder {
	var store preference.Store = preference.NewMemoryStore()
	if pool := database.Pool(); pool != nil {
		store = catalog.NewPostgres(pool, cfg.Catalog.Schema)
	}

	var fetcher preference.ThresholdFetcher
	remote, isRemote := src.(*catalog.Remote)
	if isRemote {
		fetcher = remote
	}
	recorder := preference.NewRecorder(store, preference.NewThresholdSource(cfg.Preference, fetcher), cfg.Preference)
	if isRemote {
		recorder.WithUpstream(remote)
	}
	return recorder
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "radar-service").Logger()
	return &logger
}
