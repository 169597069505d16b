package app

import (
	"context"
	"fmt"

	"recipe-manager/internal/core/ai/cache"
	"recipe-manager/internal/core/ai/openrouter"
	"recipe-manager/internal/core/ai/provider"
	aiService "recipe-manager/internal/core/ai/service"
	"recipe-manager/internal/core/image"
	"recipe-manager/internal/core/nutrition"
	"recipe-manager/internal/core/queue"
	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/core/scraper"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/infrastructure/database"
	"recipe-manager/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options 控制要啟動的元件
type Options struct {
	Queue bool
}

// App 依設定組裝好的服務
type App struct {
	DB        *gorm.DB
	Store     *database.Store
	Recipes   *recipe.Service
	Queue     *queue.Manager
	Cache     *cache.CacheManager
	Redis     *cache.Service
	AI        *aiService.Service
	Nutrition *nutrition.Client
	Images    *image.Service
	Uploader  *image.Uploader
}

// New 依設定初始化資料庫、解析來源與外部服務
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{
		DB:     db,
		Store:  database.NewStore(db),
		Images: image.NewService(cfg.Image),
	}

	producers := []recipe.Producer{
		recipe.TextProducer{},
		recipe.NewURLProducer(scraper.New(cfg.Scraper)),
	}

	if cfg.OpenRouter.Enabled {
		a.Cache = cache.NewManager(cfg.Cache)
		a.Redis, err = cache.NewService(ctx, cfg.Redis, cfg.Cache.TTL)
		if err != nil {
			a.Close()
			return nil, err
		}
		client := openrouter.NewClient(provider.Config{
			APIKey:     cfg.OpenRouter.APIKey,
			Model:      cfg.OpenRouter.Model,
			Timeout:    cfg.OpenRouter.Timeout,
			MaxRetries: cfg.OpenRouter.MaxRetries,
			BaseURL:    cfg.OpenRouter.BaseURL,
			Title:      cfg.App.Name,
		})
		a.AI = aiService.NewService(cfg.OpenRouter, client, a.Cache, a.Redis)
		producers = append(producers, recipe.NewLLMProducer(a.AI))
	} else {
		producers = append(producers, recipe.NewLLMProducer(nil))
	}

	a.Recipes = recipe.NewService(a.Store, producers...)
	if opts.Queue {
		a.Queue = a.Recipes.StartQueue(cfg.Queue)
	}

	if cfg.USDA.APIKey != "" {
		a.Nutrition = nutrition.NewClient(cfg.USDA)
	}

	a.Uploader, err = image.NewUploader(ctx, cfg.S3)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize image uploader: %w", err)
	}

	common.LogInfo("服務初始化完成",
		zap.String("database", cfg.Database.Driver),
		zap.Bool("llm_enabled", a.AI != nil),
		zap.Bool("redis_enabled", a.Redis.Enabled()),
		zap.Bool("nutrition_enabled", a.Nutrition != nil),
		zap.Bool("uploads_enabled", a.Uploader != nil),
		zap.Bool("queue_enabled", a.Queue != nil),
	)
	return a, nil
}

// Close 依相反順序釋放資源
func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.AI != nil {
		if err := a.AI.Close(); err != nil {
			common.LogWarn("Failed to close AI service", zap.Error(err))
		}
	}
	if err := a.Redis.Close(); err != nil {
		common.LogWarn("Failed to close Redis", zap.Error(err))
	}
	if err := a.Cache.Close(); err != nil {
		common.LogWarn("Failed to close cache", zap.Error(err))
	}
	if err := database.Close(a.DB); err != nil {
		common.LogWarn("Failed to close database", zap.Error(err))
	}
}
