package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cloudlinker/uploader/internal/config"
	"github.com/cloudlinker/uploader/internal/events"
	"github.com/cloudlinker/uploader/internal/http/handlers"
	"github.com/cloudlinker/uploader/internal/http/routes"
	"github.com/cloudlinker/uploader/internal/provider"
	"github.com/cloudlinker/uploader/internal/relay"
	"github.com/cloudlinker/uploader/internal/store"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration; missing secrets abort startup.
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	pingers := map[string]handlers.Pinger{}

	// Storage provider
	var storageProvider provider.Provider
	switch cfg.Upload.Provider {
	case config.ProviderSupabase:
		storageProvider = provider.NewSupabaseClient(cfg.Supabase)
	default:
		storageProvider = provider.NewCloudinaryClient(cfg.Cloudinary)
	}
	pingers["provider"] = storageProvider

	// Upload log; the relay runs without one when no DSN is configured.
	var uploadStore store.UploadStore
	if cfg.Database.DSN != "" {
		db, err := store.Open(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		pg := store.NewPostgresStore(db)
		if err := pg.RunMigrations(ctx); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		uploadStore = pg
		pingers["database"] = handlers.PingerFunc(db.PingContext)

		if cfg.Redis.Addr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			cached := store.NewCachedStore(pg, redisClient, cfg.Redis.CacheTTL, logger)
			uploadStore = cached
			pingers["cache"] = cached
		}
	} else {
		logger.Warn("No database configured, uploads will not be logged")
	}

	// Event publisher is optional; continue without it.
	var publisher relay.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		p, err := events.NewPublisher(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Warn("Failed to initialize event publisher", zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
		}
	}

	relaySvc := relay.NewService(storageProvider, uploadStore, publisher, logger, cfg.Upload)
	uploadHandler := handlers.NewUploadHandler(relaySvc, pingers, logger)
	router := routes.NewRouter(uploadHandler, logger, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
