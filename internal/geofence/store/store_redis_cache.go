package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ponto/internal/geofence/models"
	id "ponto/pkg/domain"
)

// CacheTTL bounds staleness of cached geofence configs. Every checkin read
// hits this path, while coordinator edits are rare.
const CacheTTL = 5 * time.Minute

// absentMarker caches the "no config" answer so missing configs don't hammer
// the database on every submission.
const absentMarker = "absent"

// CachedConfigStore is a Redis read-through decorator over another
// ConfigStore. Upserts write through and refresh the cache so a coordinator
// edit is visible on the next read.
type CachedConfigStore struct {
	inner ConfigStore
	redis *redis.Client
	ttl   time.Duration
}

// NewCached wraps inner with a Redis cache. A nil client disables caching and
// delegates straight to inner.
func NewCached(inner ConfigStore, client *redis.Client) *CachedConfigStore {
	return &CachedConfigStore{inner: inner, redis: client, ttl: CacheTTL}
}

func (s *CachedConfigStore) Get(ctx context.Context, institutionID id.InstitutionID) (*models.GeofenceConfig, error) {
	if s.redis == nil {
		return s.inner.Get(ctx, institutionID)
	}

	key := cacheKey(institutionID)
	cached, err := s.redis.Get(ctx, key).Result()
	if err == nil {
		if cached == absentMarker {
			return nil, nil
		}
		var cfg models.GeofenceConfig
		if err := json.Unmarshal([]byte(cached), &cfg); err == nil {
			return &cfg, nil
		}
		// Corrupt entry: fall through to the source of truth.
	} else if !errors.Is(err, redis.Nil) {
		// Cache unavailable is not fatal; serve from the inner store.
		return s.inner.Get(ctx, institutionID)
	}

	cfg, err := s.inner.Get(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, key, cfg)
	return cfg, nil
}

func (s *CachedConfigStore) Upsert(ctx context.Context, cfg *models.GeofenceConfig) error {
	if err := s.inner.Upsert(ctx, cfg); err != nil {
		return err
	}
	if s.redis != nil && cfg != nil {
		s.fill(ctx, cacheKey(cfg.InstitutionID), cfg)
	}
	return nil
}

func (s *CachedConfigStore) fill(ctx context.Context, key string, cfg *models.GeofenceConfig) {
	if cfg == nil {
		s.redis.Set(ctx, key, absentMarker, s.ttl)
		return
	}
	if payload, err := json.Marshal(cfg); err == nil {
		s.redis.Set(ctx, key, payload, s.ttl)
	}
}

func cacheKey(institutionID id.InstitutionID) string {
	return fmt.Sprintf("geofence:%s", institutionID)
}
