package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaking/internal/cache"
	"github.com/oggyb/muzz-matchmaking/internal/config"
	"github.com/oggyb/muzz-matchmaking/internal/notify"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Notifier   notify.Dispatcher
}

// New creates a new AppContext. Notifications go out through Redis pub/sub
// on a background goroutine; use WithNotifier to replace that.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Notifier:   notify.NewAsync(notify.NewRedisPublisher(rdb), cfg.Matching.NotifyTimeout, logger),
	}
}

// WithNotifier swaps the notification dispatcher.
func (a *AppContext) WithNotifier(d notify.Dispatcher) *AppContext {
	a.Notifier = d
	return a
}
