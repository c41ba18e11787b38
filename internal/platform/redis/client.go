package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type Config struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Addr:        envutil.String("REDIS_ADDR", ""),
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: envutil.Duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
	}
}

// NewClient returns nil, nil when no address is configured.
func NewClient(log *logger.Logger, cfg Config) (*goredis.Client, error) {
	if cfg.Addr == "" {
		if log != nil {
			log.Warn("REDIS_ADDR not set; Redis disabled")
		}
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
