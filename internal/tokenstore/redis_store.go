package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/growth-archive/pkg/config"
)

const redisDialTimeout = 5 * time.Second

// DialRedis connects to the configured server and fails unless it answers PING.
func DialRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisDialTimeout,
		// Two keys are touched per operation; a small pool suffices for one session.
		PoolSize: 4,
	})

	ctx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// RedisStore keeps credentials under two keys sharing a prefix.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore builds a store on an existing client.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) tokenKey() string  { return s.prefix + TokenKey }
func (s *RedisStore) userIDKey() string { return s.prefix + UserIDKey }

func (s *RedisStore) Get(ctx context.Context) (Credentials, bool, error) {
	values, err := s.client.MGet(ctx, s.tokenKey(), s.userIDKey()).Result()
	if err != nil {
		return Credentials{}, false, fmt.Errorf("redis get credentials: %w", err)
	}
	token, _ := values[0].(string)
	if token == "" {
		return Credentials{}, false, nil
	}
	userID, _ := values[1].(string)
	return Credentials{Token: token, UserID: userID}, true, nil
}

func (s *RedisStore) Set(ctx context.Context, token, userID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(), token, 0)
		pipe.Set(ctx, s.userIDKey(), userID, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set credentials: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.tokenKey(), s.userIDKey()).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis clear credentials: %w", err)
	}
	return nil
}
