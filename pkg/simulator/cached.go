package simulator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/cache"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/observability"
)

const cacheKeyType = "simulation"

// CachedSimulator stores successful results keyed by configuration. Every
// hit decodes a new result, so callers never share state. Failures are not
// cached.
type CachedSimulator struct {
	inner Simulator
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
	name  string
}

// Cached wraps inner with c. A nil keyer uses [cache.NewDefaultKeyer]; a
// zero ttl uses [cache.DefaultTTL].
func Cached(inner Simulator, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CachedSimulator {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}
	return &CachedSimulator{inner: inner, cache: c, keyer: keyer, ttl: ttl, name: Name(inner)}
}

// Name returns the wrapped simulator's name.
func (s *CachedSimulator) Name() string { return s.name }

// Simulate returns a cached result for cfg or runs the wrapped simulator.
// Cache read and write failures fall through to the simulator.
func (s *CachedSimulator) Simulate(ctx context.Context, cfg column.Configuration) (*column.SimulationResult, error) {
	key := s.keyer.SimulationKey(s.name, cfg.Normalized())
	hooks := observability.Cache()

	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var res column.SimulationResult
		if err := json.Unmarshal(data, &res); err == nil {
			hooks.OnCacheHit(ctx, cacheKeyType)
			return &res, nil
		}
		_ = s.cache.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	res, err := s.inner.Simulate(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(res); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err == nil {
			hooks.OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return res, nil
}
