package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// claimCursor moves a cursor from ARGV[1] to ARGV[2] only if it still holds
// ARGV[1]. Returns 1 when the range was claimed.
var claimCursor = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current ~= tonumber(ARGV[1]) then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2])
return 1
`)

// CacheService stores provider access tokens and fetch cursors in Redis.
type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

// Base operations
func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Access tokens

func (s *CacheService) GetToken(ctx context.Context, key string) (string, bool, error) {
	var token string
	found, err := s.Get(ctx, key, &token)
	return token, found, err
}

func (s *CacheService) SetToken(ctx context.Context, key, token string, ttl time.Duration) error {
	return s.SetWithTTL(ctx, key, token, ttl)
}

func (s *CacheService) InvalidateToken(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Fetch cursors. A cursor holds the highest record id already handed to a
// consumer; it has no expiry.

func (s *CacheService) cursorKey(name string) string {
	return s.GenerateKey("cursor", "fetched_record_ids", name)
}

func (s *CacheService) GetCursor(ctx context.Context, name string) (uint, error) {
	val, err := s.client.Get(ctx, s.cursorKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get cursor: %w", err)
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor value %q: %w", val, err)
	}
	return uint(id), nil
}

// ClaimCursor hands the ids in (from, to] to exactly one caller. It reports
// false when another caller moved the cursor first.
func (s *CacheService) ClaimCursor(ctx context.Context, name string, from, to uint) (bool, error) {
	claimed, err := claimCursor.Run(ctx, s.client, []string{s.cursorKey(name)}, from, to).Int()
	if err != nil {
		return false, fmt.Errorf("failed to claim cursor: %w", err)
	}
	return claimed == 1, nil
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
