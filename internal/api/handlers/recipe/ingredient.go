package recipe

import (
	"net/http"
	"strings"

	"recipe-manager/internal/core/parser"
	"recipe-manager/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// IngredientLineRequest 單行食材解析
type IngredientLineRequest struct {
	Line  string   `json:"line"`
	Lines []string `json:"lines"`
}

// IngredientLineResponse 解析結果；標題行或空行不會出現在 ingredients 中
type IngredientLineResponse struct {
	Ingredients []common.ParsedIngredient `json:"ingredients"`
	Skipped     int                       `json:"skipped"`
}

// HandleParseIngredient 解析一行或多行食材
func (h *Handler) HandleParseIngredient(c *gin.Context) {
	var req IngredientLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}

	lines := req.Lines
	if strings.TrimSpace(req.Line) != "" {
		lines = append([]string{req.Line}, lines...)
	}
	if len(lines) == 0 {
		respondError(c, common.ErrEmptyInput, h.debug)
		return
	}

	ingredients := parser.ParseIngredientLines(lines)
	c.JSON(http.StatusOK, IngredientLineResponse{
		Ingredients: ingredients,
		Skipped:     len(lines) - len(ingredients),
	})
}
