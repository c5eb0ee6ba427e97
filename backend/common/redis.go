package common

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var RDB *redis.Client
var RedisEnabled = true

// InitRedisClient connects to REDIS_CONN_STRING. Redis is optional: without it
// the ORM runs uncached and logged-out tokens are not blacklisted.
func InitRedisClient() (err error) {
	if os.Getenv("REDIS_CONN_STRING") == "" {
		RedisEnabled = false
		SysLog("REDIS_CONN_STRING not set, redis is not enabled")
		return nil
	}
	opt, err := redis.ParseURL(os.Getenv("REDIS_CONN_STRING"))
	if err != nil {
		RedisEnabled = false
		return err
	}
	RDB = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err = RDB.Ping(ctx).Result(); err != nil {
		RedisEnabled = false
		RDB = nil
		return err
	}
	RedisEnabled = true
	SysLog("redis enabled", zap.String("addr", opt.Addr))
	return nil
}

// BlacklistToken stores a revoked token until it would have expired anyway.
func BlacklistToken(ctx context.Context, token string, ttl time.Duration) error {
	if !RedisEnabled || RDB == nil {
		return nil
	}
	return RDB.Set(ctx, "jwt:blacklist:"+token, "1", ttl).Err()
}

// IsTokenBlacklisted reports whether a token was revoked on logout.
func IsTokenBlacklisted(ctx context.Context, token string) bool {
	if !RedisEnabled || RDB == nil {
		return false
	}
	n, err := RDB.Exists(ctx, "jwt:blacklist:"+token).Result()
	return err == nil && n > 0
}
