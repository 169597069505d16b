package recipe

import (
	"context"
	"net/http"
	"strings"

	recipeService "recipe-manager/internal/core/recipe"
	"recipe-manager/internal/infrastructure/database"
	"recipe-manager/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBatchInputs = 100

// RecipeStore 食譜查詢與圖片更新
type RecipeStore interface {
	ListRecipes(ctx context.Context, category string) ([]database.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*database.Recipe, error)
	SetRecipeImage(ctx context.Context, id uuid.UUID, imageURL string) error
}

// ParseTextRequest 貼上文字解析
type ParseTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// ParseURLRequest 網址解析
type ParseURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// ImportRequest 解析並儲存；producer 為 text、url 或 llm
type ImportRequest struct {
	Producer string `json:"producer"`
	Input    string `json:"input" binding:"required"`
	Category string `json:"category"`
}

// ImportResponse 儲存結果
type ImportResponse struct {
	ID     uuid.UUID           `json:"id"`
	Recipe common.ParsedRecipe `json:"recipe"`
}

// BatchRequest 批次解析
type BatchRequest struct {
	Producer string   `json:"producer"`
	Inputs   []string `json:"inputs" binding:"required,min=1"`
}

// BatchResponse 批次解析結果，順序與輸入相同
type BatchResponse struct {
	Items     []recipeService.BatchItem `json:"items"`
	Succeeded int                       `json:"succeeded"`
	Failed    int                       `json:"failed"`
}

// NoNameResponse 解析完成但沒有辨識到名稱
type NoNameResponse struct {
	common.ErrorResponse
	Recipe common.ParsedRecipe `json:"recipe"`
}

// Handler 食譜處理程序
type Handler struct {
	service *recipeService.Service
	store   RecipeStore
	debug   bool
}

// NewHandler 創建新的食譜處理程序
func NewHandler(service *recipeService.Service, store RecipeStore, debug bool) *Handler {
	return &Handler{
		service: service,
		store:   store,
		debug:   debug,
	}
}

// HandleParseText 解析貼上的食譜文字
func (h *Handler) HandleParseText(c *gin.Context) {
	var req ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}
	h.parse(c, recipeService.ProducerText, req.Text)
}

// HandleParseURL 擷取並解析食譜網頁
func (h *Handler) HandleParseURL(c *gin.Context) {
	var req ParseURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}
	h.parse(c, recipeService.ProducerURL, req.URL)
}

// HandleParseLLM 以 LLM 解析食譜文字
func (h *Handler) HandleParseLLM(c *gin.Context) {
	var req ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}
	if !h.service.HasProducer(recipeService.ProducerLLM) {
		respondError(c, common.ErrLLMDisabled, h.debug)
		return
	}
	h.parse(c, recipeService.ProducerLLM, req.Text)
}

func (h *Handler) parse(c *gin.Context, producer, input string) {
	r, err := h.service.Parse(c.Request.Context(), producer, input)
	if err != nil {
		h.respondParseError(c, r, err)
		return
	}

	common.LogInfo("食譜解析成功",
		zap.String("request_id", requestid.Get(c)),
		zap.String("producer", producer),
		zap.String("name", r.NameIT),
	)
	c.JSON(http.StatusOK, r)
}

// respondParseError 缺少名稱時仍回傳部分解析結果
func (h *Handler) respondParseError(c *gin.Context, r common.ParsedRecipe, err error) {
	if !isNoName(err) {
		respondError(c, err, h.debug)
		return
	}
	_, resp := common.ToErrorResponse(err, h.debug)
	common.LogWarn("無法辨識食譜名稱",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("ingredients", len(r.Ingredients)),
	)
	c.JSON(http.StatusUnprocessableEntity, NoNameResponse{ErrorResponse: resp, Recipe: r})
}

// HandleImport 解析並儲存食譜
func (h *Handler) HandleImport(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}
	producer := strings.ToLower(strings.TrimSpace(req.Producer))
	if producer == "" {
		producer = recipeService.ProducerText
	}
	if !h.service.HasProducer(producer) {
		if producer == recipeService.ProducerLLM {
			respondError(c, common.ErrLLMDisabled, h.debug)
			return
		}
		respondError(c, common.NewValidationError("unknown producer: "+producer), h.debug)
		return
	}

	id, r, err := h.service.Import(c.Request.Context(), producer, req.Input, strings.TrimSpace(req.Category))
	if err != nil {
		h.respondParseError(c, r, err)
		return
	}

	c.Header("Location", "/api/v1/recipes/"+id.String())
	c.JSON(http.StatusCreated, ImportResponse{ID: id, Recipe: r})
}

// HandleList 列出食譜，可用 category 篩選
func (h *Handler) HandleList(c *gin.Context) {
	recipes, err := h.store.ListRecipes(c.Request.Context(), strings.TrimSpace(c.Query("category")))
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

// HandleGet 取得單一食譜
func (h *Handler) HandleGet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, err, h.debug)
		return
	}

	r, err := h.store.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, r)
}

// HandleBatch 批次解析，未儲存
func (h *Handler) HandleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}
	if len(req.Inputs) > maxBatchInputs {
		respondError(c, common.NewValidationError("too many inputs in one batch"), h.debug)
		return
	}
	producer := strings.ToLower(strings.TrimSpace(req.Producer))
	if producer == "" {
		producer = recipeService.ProducerText
	}
	if !h.service.HasProducer(producer) {
		respondError(c, common.NewValidationError("unknown or disabled producer: "+producer), h.debug)
		return
	}

	items := h.service.Batch(c.Request.Context(), producer, req.Inputs)
	resp := BatchResponse{Items: items}
	for _, item := range items {
		if item.Error == "" {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}

	common.LogInfo("批次解析完成",
		zap.String("request_id", requestid.Get(c)),
		zap.String("producer", producer),
		zap.Int("succeeded", resp.Succeeded),
		zap.Int("failed", resp.Failed),
	)
	c.JSON(http.StatusOK, resp)
}
