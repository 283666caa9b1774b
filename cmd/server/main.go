package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"transcriptions/internal/api"
	"transcriptions/internal/config"
	"transcriptions/internal/logger"
	"transcriptions/internal/repository"
	"transcriptions/internal/stt"
	"transcriptions/internal/transcription"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(cfg.LogLevel, cfg.LogFormat, "transcription-service")
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := newRepository(ctx, cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize store")
	}

	provider, err := stt.CreateProvider(cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create STT provider")
	}

	svc := transcription.NewService(repo, provider, appLog)
	r := api.NewRouter(api.NewHandler(svc, appLog), appLog)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLog.Info("Transcription service running", map[string]interface{}{
			"port":     cfg.Port,
			"store":    cfg.StoreBackend,
			"provider": provider.Name(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Graceful shutdown failed")
	}
}

// newRepository builds the store selected by STORE_BACKEND
func newRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.TranscriptionRepository, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		rdb := repository.NewRedisClient(cfg.Redis)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		log.Info("Using Redis store", map[string]interface{}{"addr": cfg.Redis.Addr})
		return repository.NewRedisRepository(rdb, log), nil
	case config.StoreMemory:
		log.Warn("Using in-memory store, records are lost on restart")
		return repository.NewMemoryRepository(), nil
	default:
		client, err := repository.NewDynamoDBClient(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
		log.Info("Using DynamoDB store", map[string]interface{}{
			"region": cfg.AWS.Region,
			"table":  cfg.AWS.Table,
		})
		return repository.NewDynamoDBRepository(client, cfg.AWS.Table, log), nil
	}
}
