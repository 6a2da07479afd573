package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/strikelab/cyberlab/config"
	"github.com/strikelab/cyberlab/internal/dto"
	"github.com/strikelab/cyberlab/internal/service"
)

const moduleListKey = "cyberlab:catalog:modules"

// redisCatalogCache keeps the module listing in redis for a short TTL. Every
// backend failure is logged and treated as a cache miss so the catalog keeps
// serving from the database when redis is away.
type redisCatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCatalogCache wires the redis-backed cache, or nil (caching disabled)
// when no REDIS_ADDR is configured.
func NewCatalogCache(cfg *config.Config) service.CatalogCache {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("REDIS_ADDR not set, catalog caching disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	log.Info().Str("addr", cfg.Redis.Addr).Int("ttl_seconds", cfg.Redis.CatalogCacheTTL).Msg("Catalog cache enabled")
	return &redisCatalogCache{
		rdb: rdb,
		ttl: time.Duration(cfg.Redis.CatalogCacheTTL) * time.Second,
	}
}

func (c *redisCatalogCache) GetModules() ([]dto.ModuleSummaryDTO, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := c.rdb.Get(ctx, moduleListKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("Catalog cache read failed")
		}
		return nil, false
	}
	var modules []dto.ModuleSummaryDTO
	if err := json.Unmarshal(payload, &modules); err != nil {
		log.Warn().Err(err).Msg("Catalog cache payload corrupt, dropping")
		c.InvalidateModules()
		return nil, false
	}
	return modules, true
}

func (c *redisCatalogCache) SetModules(modules []dto.ModuleSummaryDTO) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := json.Marshal(modules)
	if err != nil {
		log.Warn().Err(err).Msg("Catalog cache marshal failed")
		return
	}
	if err := c.rdb.Set(ctx, moduleListKey, payload, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("Catalog cache write failed")
	}
}

func (c *redisCatalogCache) InvalidateModules() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.rdb.Del(ctx, moduleListKey).Err(); err != nil {
		log.Warn().Err(err).Msg("Catalog cache invalidation failed")
	}
}
