package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrMiss is returned by KV.Get when the key does not exist.
var ErrMiss = errors.New("redis: key not found")

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) *redis.Client {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
	return Rdb
}

// KV is the subset of Redis the rest of the service needs. It keeps callers
// testable without a running server.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	// GetDel reads and removes key in one step.
	GetDel(ctx context.Context, key string) (string, error)
}

type clientKV struct {
	rdb *redis.Client
}

// NewKV adapts a go-redis client to KV.
func NewKV(rdb *redis.Client) KV {
	return &clientKV{rdb: rdb}
}

func (c *clientKV) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

func (c *clientKV) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to write to redis")
		return err
	}
	return nil
}

func (c *clientKV) GetDel(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}
