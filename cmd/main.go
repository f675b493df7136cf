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
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"

	"github.com/Dosada05/prode/brackets"
	"github.com/Dosada05/prode/config"
	"github.com/Dosada05/prode/db"
	"github.com/Dosada05/prode/events"
	"github.com/Dosada05/prode/handlers"
	"github.com/Dosada05/prode/repositories"
	api "github.com/Dosada05/prode/routes"
	"github.com/Dosada05/prode/services"
	"github.com/Dosada05/prode/storage"
)

// @title                      Prode API
// @version                    1.0
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	competitions, err := config.LoadCompetitions(cfg.CompetitionsFile, cfg.LockLead)
	if err != nil {
		return fmt.Errorf("failed to load competitions: %w", err)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Duration("lock_lead", cfg.LockLead),
		slog.Bool("strict_picks", cfg.StrictPicks),
		slog.Int("configured_tournaments", len(competitions.Tournaments())),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.EnsureSchema(ctx, dbConn); err != nil {
		return err
	}
	logger.Info("database connection established")

	clock := clockwork.NewRealClock()

	// Хранилище снимков таблиц (Cloudflare R2), опционально
	var store storage.ObjectStore
	if cfg.R2Enabled() {
		store, err = storage.NewCloudflareR2Store(ctx, storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 store: %w", err)
		}
		logger.Info("Cloudflare R2 snapshot store initialized", slog.String("bucket", cfg.R2BucketName))
	}

	var publisher events.Publisher = events.NewLogPublisher(logger, clock)
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(events.DefaultNATSConfig(cfg.NATSURL), logger, clock)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher = natsPublisher
		logger.Info("NATS publisher connected")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", slog.Any("error", err))
		}
	}()

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)

	// Инициализация репозиториев
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	tiebreakerRepo := repositories.NewPostgresTiebreakerRepository(dbConn)

	// Инициализация сервисов
	standingsService := services.NewStandingsService(matchRepo, predictionRepo, store, publisher, clock, logger)
	bracketService := services.NewBracketService(matchRepo, bracketRepo, competitions, publisher, clock, cfg.StrictPicks, logger)
	matchService := services.NewMatchService(dbConn, matchRepo, standingsService, bracketService, wsHub, publisher, store != nil, logger)
	predictionService := services.NewPredictionService(matchRepo, predictionRepo, clock, logger)
	leaderboardService := services.NewLeaderboardService(matchRepo, predictionRepo, bracketRepo, tiebreakerRepo, competitions, clock, logger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Match:       handlers.NewMatchHandler(matchService),
		Standings:   handlers.NewStandingsHandler(standingsService),
		Prediction:  handlers.NewPredictionHandler(predictionService),
		Bracket:     handlers.NewBracketHandler(bracketService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	}, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

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

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
	if err := server.Shutdown(shutdownCtx); err != nil {
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}
