package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oggyb/muzz-matchmaking/internal/app"
	"github.com/oggyb/muzz-matchmaking/internal/cache"
	"github.com/oggyb/muzz-matchmaking/internal/config"
	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/logger"
	"github.com/oggyb/muzz-matchmaking/internal/notify"
	"github.com/oggyb/muzz-matchmaking/internal/server"
	"github.com/oggyb/muzz-matchmaking/internal/service/matchmaking"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	// Inject logger into app context
	appCtx := app.New(cfg, database, redisCache, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.App.ENV == "development" {
		if _, err := matchmaking.Seed(ctx, appCtx); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	metricsSrv := server.StartMetricsServer(cfg, log)

	log.Info("starting gRPC server", "host", cfg.GRPC.Host, "port", cfg.GRPC.Port)
	if err := server.StartGRPCServer(ctx, cfg, log, matchmaking.NewRegistrar(appCtx)); err != nil {
		log.Error("gRPC server stopped", "err", err)
	}

	// let in-flight notifications finish before the Redis client closes
	if a, ok := appCtx.Notifier.(*notify.Async); ok {
		a.Wait()
	}
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	log.Info("server exited")
}
