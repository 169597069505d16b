package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "recipe-manager:"

// Service Redis 二級緩存，跨實例共用 LLM 回應
type Service struct {
	client *redis.Client
	ttl    time.Duration
}

// NewService 創建 Redis 緩存服務；未啟用時回傳可安全呼叫的空服務
func NewService(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*Service, error) {
	if !cfg.Enabled {
		return &Service{ttl: ttl}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Service{
		client: client,
		ttl:    ttl,
	}, nil
}

// Enabled 是否已連線
func (s *Service) Enabled() bool {
	return s != nil && s.client != nil
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, namespace, input string) (string, error) {
	if !s.Enabled() {
		return "", common.ErrCacheDisabled
	}

	val, err := s.client.Get(ctx, redisKeyPrefix+GenerateKey(namespace, input)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return val, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, namespace, input, value string) error {
	if !s.Enabled() {
		return nil
	}

	if err := s.client.Set(ctx, redisKeyPrefix+GenerateKey(namespace, input), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *Service) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Close()
}
