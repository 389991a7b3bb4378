// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/config"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/database/postgres"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/database/redis"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/storage"
	"github.com/sudeepthiperuri3/shop-sphere/internal/interfaces/http"
	"github.com/sudeepthiperuri3/shop-sphere/internal/pkg/logger"
)

const purgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr := logger.New(cfg)
	logr.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting storefront")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		backend     storage.Storage
		redisClient *goredis.Client
	)

	switch cfg.Storage.Driver {
	case config.StorageRedis:
		client, err := redis.NewConnection(cfg, logr)
		if err != nil {
			logr.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer client.Close()

		backend = client
		redisClient = client.GetClient()

	case config.StoragePostgres:
		db, err := postgres.NewConnection(cfg, logr)
		if err != nil {
			logr.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		if err := db.Health(); err != nil {
			logr.WithError(err).Fatal("Database health check failed")
		}

		migration := postgres.NewMigration(db.GetDB(), logr)
		if err := migration.RunAutoMigrations(); err != nil {
			logr.WithError(err).Fatal("Database migration failed")
		}
		if err := migration.CreateIndexes(); err != nil {
			logr.WithError(err).Warn("Index creation failed")
		}

		pgStorage := postgres.NewStorage(db.GetDB(), cfg.Storage.TTL)
		go purgeExpired(ctx, pgStorage, logr)
		backend = pgStorage

	default:
		logr.Warn("Using in-memory session storage; carts and logins are lost on restart")
		backend = storage.NewMemoryStorage()
	}

	// Login rate limiting needs Redis even when sessions live elsewhere
	if redisClient == nil {
		if client, err := redis.NewConnection(cfg, logr); err != nil {
			logr.WithError(err).Warn("Redis unavailable, login rate limiting disabled")
		} else {
			defer client.Close()
			redisClient = client.GetClient()
		}
	}

	server := http.NewServer(cfg, logr, backend, redisClient)

	go func() {
		if err := server.Start(); err != nil {
			logr.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	<-ctx.Done()
	logr.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logr.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logr.Info("Server shutdown completed")
}

// purgeExpired removes expired session rows until ctx is done
func purgeExpired(ctx context.Context, st *postgres.Storage, logr logrus.FieldLogger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.PurgeExpired(ctx)
			if err != nil {
				logr.WithError(err).Warn("Failed to purge expired session data")
				continue
			}
			if n > 0 {
				logr.WithField("rows", n).Info("Purged expired session data")
			}
		}
	}
}
