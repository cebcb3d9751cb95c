package main

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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/officesports/matchday/config"
	"github.com/officesports/matchday/db"
	"github.com/officesports/matchday/handlers"
	"github.com/officesports/matchday/live"
	"github.com/officesports/matchday/repositories"
	api "github.com/officesports/matchday/routes"
	"github.com/officesports/matchday/services"
	"github.com/officesports/matchday/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Object storage is optional: without R2 credentials exports still
	// work, they just stream back instead of being archived.
	var uploader storage.FileUploader
	if cfg.UploadsEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("object storage disabled, exports will stream directly")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()

	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	fixtureRepo := repositories.NewPostgresFixtureRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)

	authService := services.NewAuthService(cfg)
	participantService := services.NewParticipantService(participantRepo, fixtureRepo, matchRepo, logger)
	fixtureService := services.NewFixtureService(repositories.NewTxRunner(dbConn), fixtureRepo, matchRepo, participantRepo, wsHub, logger)
	matchService := services.NewMatchService(matchRepo, wsHub, logger)
	emailService := services.NewEmailService(fixtureRepo, services.NewSMTPNotifier(cfg, logger), logger)
	reportService := services.NewReportService(matchRepo)
	rosterService := services.NewRosterService(participantService, fixtureRepo, uploader, logger)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService)
	participantHandler := handlers.NewParticipantHandler(participantService)
	fixtureHandler := handlers.NewFixtureHandler(fixtureService, emailService)
	matchHandler := handlers.NewMatchHandler(matchService)
	rosterHandler := handlers.NewRosterHandler(rosterService)
	reportHandler := handlers.NewReportHandler(reportService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		participantHandler,
		fixtureHandler,
		matchHandler,
		rosterHandler,
		reportHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
