package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
)

// Backend names accepted by Config.Backend.
const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// DefaultPingTimeout bounds the startup reachability check.
const DefaultPingTimeout = 3 * time.Second

// Config selects and locates the durable tier.
type Config struct {
	Backend  string // redis, mongo, file or memory
	URL      string // redis:// or mongodb:// URL
	Dir      string // root directory for the file backend
	Database string // MongoDB database, default "repostats"

	PingTimeout time.Duration
	Clock       clockwork.Clock
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Open builds the Tiered cache described by cfg. A primary that cannot be
// created or does not answer a ping is dropped with a warning, leaving a
// memory-only cache. Only an unknown backend name is an error.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (*Tiered, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = DefaultPingTimeout
	}
	memory := NewMemory(cfg.Clock)

	var (
		primary Cache
		err     error
	)
	switch cfg.Backend {
	case BackendMemory, "":
		return NewTiered(nil, "", memory, logger), nil
	case BackendRedis:
		primary, err = NewRedis(cfg.URL)
	case BackendMongo:
		pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
		primary, err = NewMongo(pingCtx, cfg.URL, cfg.Database, "", cfg.Clock)
		cancel()
	case BackendFile:
		primary, err = NewFileCache(cfg.Dir, cfg.Clock)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err == nil {
		if p, ok := primary.(pinger); ok {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
			err = p.Ping(pingCtx)
			cancel()
			if err != nil {
				_ = primary.Close()
			}
		}
	}
	if err != nil {
		logger.Warn("durable cache unavailable, using in-memory cache", "backend", cfg.Backend, "err", err)
		return NewTiered(nil, "", memory, logger), nil
	}

	logger.Debug("cache ready", "backend", cfg.Backend)
	return NewTiered(primary, cfg.Backend, memory, logger), nil
}
