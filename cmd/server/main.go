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

	"github.com/NareshCreations/billiards-tournament-system/config"
	"github.com/NareshCreations/billiards-tournament-system/db"
	"github.com/NareshCreations/billiards-tournament-system/handlers"
	"github.com/NareshCreations/billiards-tournament-system/live"
	"github.com/NareshCreations/billiards-tournament-system/repositories"
	api "github.com/NareshCreations/billiards-tournament-system/routes"
	"github.com/NareshCreations/billiards-tournament-system/services"
	"github.com/NareshCreations/billiards-tournament-system/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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

	var uploader storage.FileUploader
	if cfg.StorageConfigured() {
		uploader, err = storage.NewS3Uploader(storage.S3UploaderConfig{
			Endpoint:        cfg.StorageEndpoint,
			Region:          cfg.StorageRegion,
			AccessKeyID:     cfg.StorageAccessKeyID,
			SecretAccessKey: cfg.StorageSecretAccessKey,
			BucketName:      cfg.StorageBucket,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize object storage uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("object storage uploader initialized")
	} else {
		logger.Warn("object storage not configured, avatar uploads disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	winnerRepo := repositories.NewPostgresWinnerRepository(dbConn)
	logger.Info("repositories initialized")

	stateStore := services.NewStateStore(services.NewStateLoader(
		tournamentRepo, playerRepo, roundRepo, matchRepo, winnerRepo,
	))

	authService := services.NewAuthService(userRepo)
	tournamentService := services.NewTournamentService(
		dbConn, tournamentRepo, playerRepo, stateStore, wsHub, cfg.CommandTimeout, logger,
	)
	roundService := services.NewRoundService(
		dbConn, roundRepo, matchRepo, playerRepo, stateStore, wsHub, cfg.CommandTimeout, logger,
	)
	matchService := services.NewMatchService(
		dbConn, matchRepo, playerRepo, roundRepo, winnerRepo, stateStore, wsHub, cfg.CommandTimeout, logger,
	)
	rankingService := services.NewRankingService(
		dbConn, winnerRepo, stateStore, wsHub, cfg.CommandTimeout, logger,
	)
	var playerService services.PlayerService
	if uploader != nil {
		playerService = services.NewPlayerService(playerRepo, uploader, stateStore, logger)
	}
	logger.Info("services initialized")

	// Status sweeper: tournaments whose frozen final round produced a
	// champion become completed without organizer action.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		logger.Info("tournament status sweeper started", slog.Duration("interval", cfg.SweepInterval))

		if err := tournamentService.CompleteDecided(context.Background()); err != nil {
			logger.Error("status sweep initial run failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := tournamentService.CompleteDecided(context.Background()); err != nil {
				logger.Error("status sweep failed", slog.Any("error", err))
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	roundHandler := handlers.NewRoundHandler(roundService)
	matchHandler := handlers.NewMatchHandler(matchService)
	rankingHandler := handlers.NewRankingHandler(rankingService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		tournamentHandler,
		roundHandler,
		matchHandler,
		rankingHandler,
		playerHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
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
	logger.Info("application exited")
}
