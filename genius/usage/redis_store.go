package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyUsageCount = "usage:count:%s"

// increments KEYS[1] only while it is below ARGV[1], returns -1 on refusal
var incrementIfBelowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return -1
end
return redis.call('INCR', KEYS[1])
`)

// decrements KEYS[1] without going below zero or creating the key
var releaseScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current <= 0 then
	return 0
end
return redis.call('DECR', KEYS[1])
`)

// implements Ledger using Redis counters
type RedisStore struct {
	client *redis.Client
}

// creates a new Redis-backed ledger
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// creates a new Redis-backed ledger from a URL
func NewRedisStoreFromURL(redisURL string) (*RedisStore, error) {
	client, err := NewRedisClient(redisURL)
	if err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// parses the URL and verifies the connection
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on failed connect
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// returns the underlying client, shared with the rate limiter
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) Count(ctx context.Context, userID string) (int, error) {
	if err := validate(userID); err != nil {
		return 0, err
	}

	count, err := s.client.Get(ctx, key(userID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get usage count: %w", err)
	}

	return count, nil
}

func (s *RedisStore) Increment(ctx context.Context, userID string) (int, error) {
	if err := validate(userID); err != nil {
		return 0, err
	}

	count, err := s.client.Incr(ctx, key(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment usage count: %w", err)
	}

	return int(count), nil
}

func (s *RedisStore) IncrementIfBelow(ctx context.Context, userID string, limit int) (int, bool, error) {
	if err := validate(userID); err != nil {
		return 0, false, err
	}

	result, err := incrementIfBelowScript.Run(ctx, s.client, []string{key(userID)}, limit).Int()
	if err != nil {
		return 0, false, fmt.Errorf("failed to reserve usage: %w", err)
	}

	if result < 0 {
		current, err := s.Count(ctx, userID)
		return current, false, err
	}

	return result, true, nil
}

func (s *RedisStore) Release(ctx context.Context, userID string) error {
	if err := validate(userID); err != nil {
		return err
	}

	if err := releaseScript.Run(ctx, s.client, []string{key(userID)}).Err(); err != nil {
		return fmt.Errorf("failed to release usage: %w", err)
	}

	return nil
}

func (s *RedisStore) Reset(ctx context.Context, userID string) error {
	if err := validate(userID); err != nil {
		return err
	}

	// SET XX leaves identities without a record untouched
	if err := s.client.SetXX(ctx, key(userID), 0, 0).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to reset usage: %w", err)
	}

	return nil
}

func key(userID string) string {
	return fmt.Sprintf(keyUsageCount, userID)
}
