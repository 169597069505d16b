package recipe

import (
	"context"
	"net/http"
	"strings"

	"recipe-manager/internal/infrastructure/database"
	"recipe-manager/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageProcessor 將圖片轉為 JPEG
type ImageProcessor interface {
	ProcessImage(ctx context.Context, imageData string) ([]byte, error)
}

// ImageUploader 上傳圖片並回傳公開網址
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, slug string) (string, error)
}

// ImageUploadRequest 圖片上傳請求
// image: data URI 或 URL
type ImageUploadRequest struct {
	Image    string `json:"image" binding:"required"`
	Slug     string `json:"slug,omitempty"`
	RecipeID string `json:"recipe_id,omitempty"`
}

// ImageUploadResponse 圖片上傳結果
type ImageUploadResponse struct {
	URL      string     `json:"url"`
	RecipeID *uuid.UUID `json:"recipe_id,omitempty"`
}

// ImageHandler 食譜圖片處理程序
type ImageHandler struct {
	processor ImageProcessor
	uploader  ImageUploader
	store     RecipeStore
	debug     bool
}

// NewImageHandler 創建圖片處理程序；uploader 為 nil 時上傳回傳 503
func NewImageHandler(processor ImageProcessor, uploader ImageUploader, store RecipeStore, debug bool) *ImageHandler {
	return &ImageHandler{
		processor: processor,
		uploader:  uploader,
		store:     store,
		debug:     debug,
	}
}

// HandleUpload 處理 /images 上傳，指定 recipe_id 時一併更新食譜圖片
func (h *ImageHandler) HandleUpload(c *gin.Context) {
	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}
	if h.uploader == nil {
		respondError(c, common.ErrStorageDisabled, h.debug)
		return
	}

	var recipeID *uuid.UUID
	slug := database.Slugify(req.Slug)
	if strings.TrimSpace(req.RecipeID) != "" {
		id, err := uuid.Parse(req.RecipeID)
		if err != nil {
			badRequest(c, err, h.debug)
			return
		}
		r, err := h.store.GetRecipe(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, h.debug)
			return
		}
		recipeID = &id
		if slug == "" {
			slug = r.Slug
		}
	}

	common.LogInfo("開始處理圖片上傳",
		zap.String("request_id", requestid.Get(c)),
		zap.String("image_type", getImageType(req.Image)),
		zap.Int("image_length", len(req.Image)),
	)

	data, err := h.processor.ProcessImage(c.Request.Context(), req.Image)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), data, slug)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	if recipeID != nil {
		if err := h.store.SetRecipeImage(c.Request.Context(), *recipeID, url); err != nil {
			respondError(c, err, h.debug)
			return
		}
	}

	c.JSON(http.StatusCreated, ImageUploadResponse{URL: url, RecipeID: recipeID})
}
