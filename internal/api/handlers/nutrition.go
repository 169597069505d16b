package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"recipe-manager/internal/core/nutrition"
	"recipe-manager/internal/core/parser"
	"recipe-manager/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

const maxLookupNames = 50

// NutritionClient USDA 查詢介面
type NutritionClient interface {
	SearchFood(ctx context.Context, query string, pageSize int) ([]nutrition.Food, error)
	GetFood(ctx context.Context, fdcID string) (*nutrition.Food, error)
	LookupIngredients(ctx context.Context, names []string) ([]nutrition.Match, error)
}

// LookupRequest 批次查詢；lines 會先經過食材解析取出名稱
type LookupRequest struct {
	Names []string `json:"names"`
	Lines []string `json:"lines"`
}

// NutritionHandler 營養資料處理器
type NutritionHandler struct {
	client NutritionClient
	debug  bool
}

// NewNutritionHandler 創建營養資料處理器
func NewNutritionHandler(client NutritionClient, debug bool) *NutritionHandler {
	return &NutritionHandler{
		client: client,
		debug:  debug,
	}
}

// Search 依名稱搜尋 USDA 食物
func (h *NutritionHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		h.fail(c, common.NewValidationError("query parameter q is required"))
		return
	}

	pageSize := 0
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 50 {
			h.fail(c, common.NewValidationError("page_size must be between 1 and 50"))
			return
		}
		pageSize = n
	}

	foods, err := h.client.SearchFood(c.Request.Context(), query, pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"foods": foods,
	})
}

// GetFood 取得單一 USDA 食物明細
func (h *NutritionHandler) GetFood(c *gin.Context) {
	id := c.Param("fdc_id")
	if _, err := strconv.Atoi(id); err != nil {
		h.fail(c, common.NewValidationError("fdc_id must be numeric"))
		return
	}

	food, err := h.client.GetFood(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if food == nil {
		h.fail(c, common.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, food)
}

// Lookup 為多個食材名稱找最接近的 USDA 食物
func (h *NutritionHandler) Lookup(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	names := make([]string, 0, len(req.Names)+len(req.Lines))
	for _, n := range req.Names {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	for _, ing := range parser.ParseIngredientLines(req.Lines) {
		names = append(names, ing.Name)
	}
	if len(names) == 0 {
		h.fail(c, common.ErrEmptyInput)
		return
	}
	if len(names) > maxLookupNames {
		h.fail(c, common.NewValidationError("too many names in one lookup"))
		return
	}

	matches, err := h.client.LookupIngredients(c.Request.Context(), names)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (h *NutritionHandler) fail(c *gin.Context, err error) {
	status, resp := common.ToErrorResponse(err, h.debug)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
