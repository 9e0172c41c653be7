package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/skilloww/cs2panel/config"
	"github.com/skilloww/cs2panel/db"
	"github.com/skilloww/cs2panel/discord"
	"github.com/skilloww/cs2panel/handlers"
	"github.com/skilloww/cs2panel/live"
	"github.com/skilloww/cs2panel/repositories"
	api "github.com/skilloww/cs2panel/routes"
	"github.com/skilloww/cs2panel/services"
	"github.com/skilloww/cs2panel/steam"
	"github.com/skilloww/cs2panel/storage"
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
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema up to date")

	var uploader storage.FileUploader
	if cfg.R2Configured() {
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
		logger.Info("logo storage not configured, uploads disabled")
	}

	notifier, err := discord.NewNotifier(cfg.DiscordWebhookURL)
	if err != nil {
		logger.Error("failed to initialize Discord notifier", slog.Any("error", err))
		os.Exit(1)
	}
	if notifier != nil {
		logger.Info("Discord notifier initialized")
	}

	hub := live.NewHub()
	go hub.Run()
	logger.Info("live hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	serverRepo := repositories.NewPostgresServerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	mapStatRepo := repositories.NewPostgresMapStatRepository(dbConn)
	playerStatRepo := repositories.NewPostgresPlayerStatRepository(dbConn)
	logger.Info("repositories initialized")

	steamClient := steam.NewClient(cfg.SteamAPIKey)

	authService := services.NewAuthService(userRepo, steamClient, cfg.JWTSecretKey, cfg.BaseURL)
	teamService := services.NewTeamService(teamRepo, userRepo, uploader)
	serverService := services.NewServerService(serverRepo)
	matchService := services.NewMatchService(matchRepo, teamRepo, serverRepo, notifier, cfg.BaseURL)
	webhookService := services.NewWebhookService(matchRepo, serverRepo, mapStatRepo, playerStatRepo, hub, notifier)
	logger.Info("services initialized")

	secureCookies := strings.HasPrefix(cfg.BaseURL, "https://")
	authHandler := handlers.NewAuthHandler(authService, secureCookies)
	teamHandler := handlers.NewTeamHandler(teamService)
	serverHandler := handlers.NewServerHandler(serverService)
	matchHandler := handlers.NewMatchHandler(matchService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	webSocketHandler := handlers.NewWebSocketHandler(hub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		teamHandler,
		serverHandler,
		matchHandler,
		webhookHandler,
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
