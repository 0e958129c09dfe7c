package cache

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repostats/pkg/observability"
)

// Tiered combines an optional durable primary with the memory tier.
// Primary failures are logged and reported to hooks but never returned.
type Tiered struct {
	primary     Cache
	primaryTier string
	memory      *Memory
	logger      *log.Logger
}

// NewTiered creates a Tiered cache. primary may be nil for memory-only
// operation; tier names it in logs and metrics. A nil logger discards.
func NewTiered(primary Cache, tier string, memory *Memory, logger *log.Logger) *Tiered {
	if memory == nil {
		memory = NewMemory(nil)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Tiered{
		primary:     primary,
		primaryTier: tier,
		memory:      memory,
		logger:      logger,
	}
}

// Primary returns the tier name of the durable primary, or "" when running
// memory-only.
func (t *Tiered) Primary() string {
	if t.primary == nil {
		return ""
	}
	return t.primaryTier
}

// Get reads the primary first. A clean primary miss is a miss; a primary
// error falls through to the memory tier.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	hooks := observability.Cache()
	if t.primary != nil {
		data, ok, err := t.primary.Get(ctx, key)
		switch {
		case err != nil:
			t.primaryFailed(ctx, "get", key, err)
		case ok:
			hooks.OnCacheHit(ctx, t.primaryTier)
			return data, true, nil
		default:
			hooks.OnCacheMiss(ctx, t.primaryTier)
			return nil, false, nil
		}
	}

	data, ok, _ := t.memory.Get(ctx, key)
	if ok {
		hooks.OnCacheHit(ctx, TierMemory)
	} else {
		hooks.OnCacheMiss(ctx, TierMemory)
	}
	return data, ok, nil
}

// Set writes the primary with ttl, then the memory tier with an absolute
// expiry of now+ttl regardless of the primary outcome.
func (t *Tiered) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	hooks := observability.Cache()
	if t.primary != nil {
		if err := t.primary.Set(ctx, key, data, ttl); err != nil {
			t.primaryFailed(ctx, "set", key, err)
		} else {
			hooks.OnCacheSet(ctx, t.primaryTier, len(data))
		}
	}
	_ = t.memory.Set(ctx, key, data, ttl)
	hooks.OnCacheSet(ctx, TierMemory, len(data))
	return nil
}

// Delete removes key from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) error {
	if t.primary != nil {
		if err := t.primary.Delete(ctx, key); err != nil {
			t.primaryFailed(ctx, "delete", key, err)
		}
	}
	return t.memory.Delete(ctx, key)
}

// Close closes both tiers. The primary close error, if any, is returned.
func (t *Tiered) Close() error {
	var err error
	if t.primary != nil {
		err = t.primary.Close()
	}
	_ = t.memory.Close()
	return err
}

func (t *Tiered) primaryFailed(ctx context.Context, op, key string, err error) {
	observability.Cache().OnCacheError(ctx, t.primaryTier, op, err)
	t.logger.Debug("primary cache failed, using memory", "tier", t.primaryTier, "op", op, "key", key, "err", err)
}

var _ Cache = (*Tiered)(nil)
