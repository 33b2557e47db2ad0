package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"staybook/internal/adapters/catalog"
	"staybook/internal/adapters/observability"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/app"
	"staybook/internal/domain"
	"staybook/internal/shared"
)

// warmcache primes the Redis cache with the hotel list and every hotel's
// detail record so the first page loads after a deploy never hit the
// upstream catalog cold.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.CatalogBase).
		Int("workers", cfg.Workers).
		Msg("warmcache starting")

	client, err := catalog.New(cfg.CatalogBase, cfg.CatalogKey, cfg.CatalogRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog client init failed")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewCatalogService(client, cache, cfg.CacheTTL)

	// fills the unfiltered list key and gives us the IDs to warm
	hotels, err := svc.ListHotels(ctx, domain.SearchFilters{})
	if err != nil {
		log.Fatal().Err(err).Msg("hotel list fetch failed")
	}
	log.Info().Int("hotels", len(hotels)).Msg("hotel list cached")

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, h := range hotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(hotelID int64) {
			defer wg.Done()
			defer sem.Release(1)

			if _, err := svc.GetHotel(ctx, hotelID); err != nil {
				log.Warn().Int64("id", hotelID).Err(err).Msg("warm failed")
				return
			}
			log.Info().Int64("id", hotelID).Msg("warm ok")
		}(h.ID)
	}

	wg.Wait()
	log.Info().Msg("cache warm completed")
}
