package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ingredient-canonicalizer/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// IdempotencyStore 冪等鍵存儲。
// MarkProcessed 回報該鍵是否為首見：重跑與重送靠它辨識重複列。
type IdempotencyStore interface {
	MarkProcessed(ctx context.Context, key string) (first bool, err error)
	Close() error
}

// NewIdempotencyStore 依設定創建存儲。
// redis_addr 為空時退回進程內記憶體存儲（單機批次足夠）。
func NewIdempotencyStore(cfg *config.IdemConfig) (IdempotencyStore, error) {
	if !cfg.Enabled {
		return &noopStore{}, nil
	}
	if cfg.RedisAddr == "" {
		return newMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisStore{client: client, ttl: cfg.TTL}, nil
}

// redisStore Redis 後端
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s *redisStore) MarkProcessed(ctx context.Context, key string) (bool, error) {
	first, err := s.client.SetNX(ctx, s.redisKey(key), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark idempotency key: %w", err)
	}
	return first, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

func (s *redisStore) redisKey(key string) string {
	return fmt.Sprintf("canon:processed:%s", key)
}

// memoryStore 進程內後備存儲
type memoryStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{seen: make(map[string]bool)}
}

func (s *memoryStore) MarkProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *memoryStore) Close() error { return nil }

// noopStore 停用時的空實現：所有鍵皆視為首見
type noopStore struct{}

func (s *noopStore) MarkProcessed(context.Context, string) (bool, error) { return true, nil }
func (s *noopStore) Close() error                                        { return nil }
