// Package cache stores rendered artifacts and aggregates by key.
//
// # Tiers
//
// A durable primary tier ([Redis], [Mongo] or [FileCache]) is optional. It
// is paired with the in-process [Memory] tier inside [Tiered]:
//
//   - reads try the primary first; a primary error falls through to memory
//     and is never returned to the caller
//   - writes go to the primary with the TTL and always to memory with an
//     absolute expiry, so memory holds the freshest value
//   - when the primary is missing or unreachable at startup, [Open] returns
//     a memory-only Tiered
//
// Memory expiry is lazy: an expired key is removed when read, and every
// write sweeps all expired keys. There is no background timer.
//
// # Keys
//
// [Keyer] derives keys from the endpoint kind and the request identity.
// Components are JSON-encoded before hashing so distinct tuples never share
// a pre-image. [NewScopedKeyer] prefixes keys for deployments sharing one
// durable tier.
package cache

import (
	"context"
	"time"
)

// Tier names reported to observability hooks and logs.
const (
	TierRedis  = "redis"
	TierMongo  = "mongo"
	TierFile   = "file"
	TierMemory = "memory"
	TierNull   = "null"
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss with ok=false and a nil error. Set with ttl <= 0
// stores nothing that a later Get can observe.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
