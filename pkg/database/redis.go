package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/testps-api/internal/config"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
)

// Режимы подключения к Redis
const (
	RedisModeSingle   = "single"
	RedisModeSentinel = "sentinel"
	RedisModeCluster  = "cluster"
)

const redisPingTimeout = 5 * time.Second

// RedisOptions собирает опции клиента из конфигурации и возвращает итоговый режим.
// Пустой режим означает single; Addr используется, только если Addrs пуст.
func RedisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = RedisModeSingle
	}

	addrs := cfg.Addrs
	if len(addrs) == 0 && cfg.Addr != "" {
		addrs = []string{cfg.Addr}
	}
	if len(addrs) == 0 {
		return nil, "", fmt.Errorf("%w: redis Addrs or Addr must be provided", apperrors.ErrConfiguration)
	}

	opts := &redis.UniversalOptions{
		Addrs:           addrs,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoff) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoff) * time.Millisecond,
	}

	switch mode {
	case RedisModeSingle:
		if len(addrs) > 1 {
			return nil, "", fmt.Errorf("%w: redis single mode expects one address, got %d", apperrors.ErrConfiguration, len(addrs))
		}
	case RedisModeSentinel:
		if cfg.MasterName == "" {
			return nil, "", fmt.Errorf("%w: redis sentinel mode requires MasterName", apperrors.ErrConfiguration)
		}
		opts.MasterName = cfg.MasterName
	case RedisModeCluster:
		if cfg.DB != 0 {
			return nil, "", fmt.Errorf("%w: redis cluster mode supports only db 0", apperrors.ErrConfiguration)
		}
	default:
		return nil, "", fmt.Errorf("%w: unsupported redis mode: %s", apperrors.ErrConfiguration, mode)
	}
	return opts, mode, nil
}

// NewUniversalRedisClient подключается к Redis в заданном режиме и проверяет соединение.
// Режим выбирается явно, а не по числу адресов, поэтому кластер из одного узла тоже работает.
func NewUniversalRedisClient(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	opts, mode, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	var client redis.UniversalClient
	switch mode {
	case RedisModeSentinel:
		client = redis.NewFailoverClient(opts.Failover())
	case RedisModeCluster:
		client = redis.NewClusterClient(opts.Cluster())
	default:
		client = redis.NewClient(opts.Simple())
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping failed (mode: %s, addrs: %v): %v", apperrors.ErrDependency, mode, opts.Addrs, err)
	}
	return client, nil
}
