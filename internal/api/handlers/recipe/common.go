package recipe

import (
	"errors"
	"strings"

	"recipe-manager/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 將錯誤轉為統一的 JSON 錯誤響應
func respondError(c *gin.Context, err error, debug bool) {
	status, resp := common.ToErrorResponse(err, debug)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("request_id", requestid.Get(c)),
		zap.String("path", c.Request.URL.Path),
	}
	if status >= 500 {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// badRequest 請求格式錯誤
func badRequest(c *gin.Context, err error, debug bool) {
	respondError(c, common.ErrInvalidRequest.Wrap(err), debug)
}

// isNoName 解析成功但缺少名稱
func isNoName(err error) bool {
	return errors.Is(err, common.ErrNoRecipeName)
}

// getImageType 獲取圖片類型（用於日誌記錄）
func getImageType(image string) string {
	if image == "" {
		return "empty"
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return "url"
	}
	if strings.HasPrefix(image, "data:image/") {
		parts := strings.SplitN(image, ";base64,", 2)
		if len(parts) == 2 {
			return "base64_data_uri_" + strings.TrimPrefix(parts[0], "data:image/")
		}
		return "invalid_data_uri"
	}
	return "unknown_format"
}
