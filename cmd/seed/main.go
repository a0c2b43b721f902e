package main

import (
	"context"
	"log"

	"github.com/oggyb/muzz-matchmaking/internal/app"
	"github.com/oggyb/muzz-matchmaking/internal/cache"
	"github.com/oggyb/muzz-matchmaking/internal/config"
	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/logger"
	"github.com/oggyb/muzz-matchmaking/internal/notify"
	"github.com/oggyb/muzz-matchmaking/internal/service/matchmaking"
)

func main() {
	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()

	// seeding should not push demo notifications to real subscribers
	appCtx := app.New(cfg, database, redisCache, logger.L()).WithNotifier(notify.Nop{})

	sum, err := matchmaking.Seed(context.Background(), appCtx)
	if err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Printf("Seeding completed: %d profiles, %d swipes, %d matches, %d requests.",
		sum.Profiles, sum.Swipes, sum.Matches, sum.Requests)
}
