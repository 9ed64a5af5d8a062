package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/draftdeck/draftdeck-backend/internal/logger"
	"github.com/draftdeck/draftdeck-backend/internal/utils"
)

// RateFetcher produces the current market reference rates (prime, SOFR,
// treasury benchmarks) as annual fractions. Swapped for a stub in tests.
type RateFetcher interface {
	FetchRates(ctx context.Context) (map[string]float64, error)
}

// RateCacheService owns the market-rate cache. Rates are cached in redis
// under a single hash with an explicit TTL (RATE_CACHE_TTL_SECONDS, default
// 15 minutes); Refresh repopulates on demand regardless of TTL.
type RateCacheService interface {
	GetRates(ctx context.Context) (map[string]float64, error)
	Refresh(ctx context.Context) (map[string]float64, error)
}

const rateCacheKey = "market:rates"

type rateCacheService struct {
	log     *logger.Logger
	rdb     *goredis.Client
	fetcher RateFetcher
	ttl     time.Duration
}

func NewRateCacheService(baseLog *logger.Logger, rdb *goredis.Client, fetcher RateFetcher) RateCacheService {
	ttlSeconds := utils.GetEnvAsInt("RATE_CACHE_TTL_SECONDS", 900, baseLog)
	return &rateCacheService{
		log:     baseLog.With("service", "RateCacheService"),
		rdb:     rdb,
		fetcher: fetcher,
		ttl:     time.Duration(ttlSeconds) * time.Second,
	}
}

func (s *rateCacheService) GetRates(ctx context.Context) (map[string]float64, error) {
	if s.rdb != nil {
		cached, err := s.rdb.HGetAll(ctx, rateCacheKey).Result()
		if err == nil && len(cached) > 0 {
			out := make(map[string]float64, len(cached))
			for k, v := range cached {
				f, parseErr := strconv.ParseFloat(v, 64)
				if parseErr != nil {
					continue
				}
				out[k] = f
			}
			if len(out) > 0 {
				return out, nil
			}
		}
		if err != nil {
			s.log.Warn("rate cache read failed, falling through to fetch", "error", err)
		}
	}
	return s.Refresh(ctx)
}

func (s *rateCacheService) Refresh(ctx context.Context) (map[string]float64, error) {
	rates, err := s.fetcher.FetchRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch market rates: %w", err)
	}
	if s.rdb != nil && len(rates) > 0 {
		fields := make(map[string]interface{}, len(rates))
		for k, v := range rates {
			fields[k] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		pipe := s.rdb.TxPipeline()
		pipe.Del(ctx, rateCacheKey)
		pipe.HSet(ctx, rateCacheKey, fields)
		pipe.Expire(ctx, rateCacheKey, s.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Warn("rate cache write failed", "error", err)
		}
	}
	return rates, nil
}

// staticRateFetcher serves rates from environment configuration. It stands in
// for a market-data integration; the cache layer above it is what the rest of
// the system depends on.
type staticRateFetcher struct {
	log *logger.Logger
}

func NewStaticRateFetcher(baseLog *logger.Logger) RateFetcher {
	return &staticRateFetcher{log: baseLog.With("service", "StaticRateFetcher")}
}

func (f *staticRateFetcher) FetchRates(ctx context.Context) (map[string]float64, error) {
	parse := func(key string, def float64) float64 {
		raw := utils.GetEnv(key, "", nil)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return def
		}
		return v
	}
	return map[string]float64{
		"prime":        parse("MARKET_RATE_PRIME", 0.085),
		"sofr":         parse("MARKET_RATE_SOFR", 0.053),
		"treasury_10y": parse("MARKET_RATE_TREASURY_10Y", 0.044),
	}, nil
}
