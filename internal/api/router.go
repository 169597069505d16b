package api

import (
	"context"
	"time"

	"recipe-manager/internal/api/handlers"
	"recipe-manager/internal/api/handlers/health"
	recipeHandler "recipe-manager/internal/api/handlers/recipe"
	"recipe-manager/internal/api/middleware"
	"recipe-manager/internal/core/queue"
	recipeService "recipe-manager/internal/core/recipe"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
	"recipe-manager/internal/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由使用的服務；Nutrition 與 Uploader 可為 nil
type Dependencies struct {
	Recipes   *recipeService.Service
	Store     recipeHandler.RecipeStore
	Nutrition handlers.NutritionClient
	Images    recipeHandler.ImageProcessor
	Uploader  recipeHandler.ImageUploader
	Ping      func(ctx context.Context) error
	CacheInfo func() map[string]interface{}
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Location"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	checker := &health.Checker{
		Version: cfg.App.Version,
		Ping:    deps.Ping,
		Cache:   deps.CacheInfo,
	}
	if deps.Recipes != nil {
		checker.Queue = func() *queue.Status { return deps.Recipes.QueueStatus() }
		checker.Producers = func() map[string]bool {
			return map[string]bool{
				recipeService.ProducerText: deps.Recipes.HasProducer(recipeService.ProducerText),
				recipeService.ProducerURL:  deps.Recipes.HasProducer(recipeService.ProducerURL),
				recipeService.ProducerLLM:  deps.Recipes.HasProducer(recipeService.ProducerLLM),
			}
		}
	}

	// 健康檢查與監控
	router.GET("/health", checker.HealthCheck)
	router.GET("/ready", checker.ReadinessCheck)
	router.GET("/live", checker.LivenessCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Deduplication(cfg.DedupWindow))

	rh := recipeHandler.NewHandler(deps.Recipes, deps.Store, cfg.App.Debug)
	recipes := api.Group("/recipes")
	{
		recipes.POST("/parse", rh.HandleParseText)
		recipes.POST("/parse/url", rh.HandleParseURL)
		recipes.POST("/parse/llm", rh.HandleParseLLM)
		recipes.POST("/batch", rh.HandleBatch)
		recipes.POST("", rh.HandleImport)
		recipes.GET("", rh.HandleList)
		recipes.GET("/:id", rh.HandleGet)
	}

	api.POST("/ingredients/parse", rh.HandleParseIngredient)

	if deps.Nutrition != nil {
		nh := handlers.NewNutritionHandler(deps.Nutrition, cfg.App.Debug)
		nutrition := api.Group("/nutrition")
		{
			nutrition.GET("/search", nh.Search)
			nutrition.GET("/foods/:fdc_id", nh.GetFood)
			nutrition.POST("/lookup", nh.Lookup)
		}
	}

	if deps.Images != nil {
		ih := recipeHandler.NewImageHandler(deps.Images, deps.Uploader, deps.Store, cfg.App.Debug)
		api.POST("/images", ih.HandleUpload)
	}

	common.LogInfo("Router setup completed",
		zap.Bool("nutrition_enabled", deps.Nutrition != nil),
		zap.Bool("uploads_enabled", deps.Uploader != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
