package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"recipe-manager/internal/core/ai/cache"
	"recipe-manager/internal/core/ai/provider"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"go.uber.org/zap"
)

const cacheNamespace = "llm"

// Response AI 回應結構
type Response struct {
	Content  string
	Model    string
	CacheHit bool
}

// Service AI 服務：限速、兩級緩存與提供者調用
type Service struct {
	config       config.OpenRouterConfig
	provider     provider.Provider
	cacheManager *cache.CacheManager
	redisCache   *cache.Service
	mu           sync.Mutex
	lastRequest  time.Time
}

// NewService 創建 AI 服務；cacheManager 與 redisCache 可為 nil
func NewService(cfg config.OpenRouterConfig, p provider.Provider, cacheManager *cache.CacheManager, redisCache *cache.Service) *Service {
	return &Service{
		config:       cfg,
		provider:     p,
		cacheManager: cacheManager,
		redisCache:   redisCache,
	}
}

// ProcessRequest 統一對外方法
func (s *Service) ProcessRequest(ctx context.Context, systemPrompt, prompt string) (*Response, error) {
	// 統一空白，確保快取 key 一致
	key := normalizeForKey(systemPrompt) + "\x00" + normalizeForKey(prompt)

	if val, err := s.cacheManager.Get(ctx, cacheNamespace, key); err == nil && val != "" {
		return &Response{Content: val, Model: s.provider.GetModel(), CacheHit: true}, nil
	}
	if val, err := s.redisCache.Get(ctx, cacheNamespace, key); err == nil && val != "" {
		_ = s.cacheManager.Set(ctx, cacheNamespace, key, val)
		return &Response{Content: val, Model: s.provider.GetModel(), CacheHit: true}, nil
	}

	if err := s.checkRequestRate(); err != nil {
		return nil, err
	}

	resp, err := s.provider.Generate(ctx, &provider.Request{
		Messages: []provider.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return nil, common.ErrAIServiceError.Wrap(err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("empty AI response"))
	}

	if err := s.cacheManager.Set(ctx, cacheNamespace, key, content); err != nil {
		common.LogWarn("Failed to cache AI response", zap.Error(err))
	}
	if err := s.redisCache.Set(ctx, cacheNamespace, key, content); err != nil {
		common.LogWarn("Failed to cache AI response in Redis", zap.Error(err))
	}

	return &Response{Content: content, Model: resp.Model}, nil
}

// checkRequestRate 檢查兩次調用的最小間隔
func (s *Service) checkRequestRate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.config.MinInterval > 0 && now.Sub(s.lastRequest) < s.config.MinInterval {
		return common.ErrTooManyRequests
	}

	s.lastRequest = now
	return nil
}

// Close 關閉提供者
func (s *Service) Close() error {
	return s.provider.Close()
}

func normalizeForKey(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
