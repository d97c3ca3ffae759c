package session

import (
	"context"
	"fmt"
)

// Config selects the session backend. "memory" suits a single instance;
// "redis" is needed once the storefront runs behind a load balancer.
type Config struct {
	Provider      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Provider {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis session store requires an address")
		}
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unsupported session store provider: %s", cfg.Provider)
	}
}
