// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"urlpeek/internal/config"
	"urlpeek/internal/handler"
	"urlpeek/internal/repository"
	"urlpeek/internal/repository/memory"
	postgresRepo "urlpeek/internal/repository/postgres"
	redisRepo "urlpeek/internal/repository/redis"
	"urlpeek/internal/service"
	"urlpeek/internal/shortener"
	customLogger "urlpeek/pkg/logger"
)

func main() {
	// Health check for Docker: hit /health on the running server
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(healthcheck())
	}

	// Load environment variables from .env file (development only)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := customLogger.NewLogger(customLogger.Options{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		File:        cfg.LogFile,
	})
	defer appLogger.Sync()

	appLogger.Info("Starting urlpeek",
		"environment", cfg.Environment,
		"store", cfg.StoreDriver,
		"log_level", appLogger.Level().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	urlRepo, err := openRepository(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize store", "error", err)
	}

	urlService := service.NewURLService(urlRepo, shortener.NewCodeGenerator(), cfg, appLogger)
	urlHandler := handler.NewURLHandler(urlService, appLogger)
	router := handler.NewRouter(urlHandler, cfg, appLogger)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		appLogger.Info("Server starting", "port", cfg.ServerPort, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	if err := urlRepo.Close(); err != nil {
		appLogger.Error("Error closing store", "error", err)
	}

	appLogger.Info("Server exited successfully")
}

// openRepository builds the mapping store selected by STORE_DRIVER
func openRepository(ctx context.Context, cfg *config.Config, log *customLogger.Logger) (repository.URLRepository, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		dsn := cfg.DSN()
		db, err := postgresRepo.Connect(ctx, dsn, postgresRepo.DefaultConnectOptions, log)
		if err != nil {
			return nil, err
		}
		urlRepo := postgresRepo.NewURLRepository(db)

		if cfg.AutoMigrate {
			if err := postgresRepo.Migrate(dsn, log); err != nil {
				_ = urlRepo.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return urlRepo, nil

	case config.DriverRedis:
		return redisRepo.NewURLRepository(ctx, redisRepo.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

	case config.DriverMemory:
		log.Warn("Using in-memory store, mappings are lost on restart")
		return memory.NewURLRepository(), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func healthcheck() int {
	port := os.Getenv("PORT")
	if port == "" {
		port = config.Default().ServerPort
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%s/health", port))
	if err != nil {
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}
