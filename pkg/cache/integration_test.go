//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// Run with a local server:
//
//	REPOSTATS_TEST_REDIS_URL=redis://localhost:6379/15 \
//	REPOSTATS_TEST_MONGO_URL=mongodb://localhost:27017 \
//	go test -tags integration ./pkg/cache/

func TestRedisIntegration(t *testing.T) {
	url := os.Getenv("REPOSTATS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("REPOSTATS_TEST_REDIS_URL not set")
	}
	r, err := NewRedis(url)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if err := r.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	roundTrip(t, r)

	c, err := Open(context.Background(), Config{Backend: BackendRedis, URL: url}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.Primary() != TierRedis {
		t.Errorf("Primary() = %q, want redis", c.Primary())
	}
	roundTrip(t, c)
}

func TestMongoIntegration(t *testing.T) {
	url := os.Getenv("REPOSTATS_TEST_MONGO_URL")
	if url == "" {
		t.Skip("REPOSTATS_TEST_MONGO_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m, err := NewMongo(ctx, url, "repostats_test", "cache_"+time.Now().Format("150405"), clockwork.NewRealClock())
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = m.coll.Drop(context.Background())
		_ = m.Close()
	}()

	roundTrip(t, m)
}
