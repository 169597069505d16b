package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"recipe-manager/internal/core/ai/provider"
	"recipe-manager/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultReferer = "https://recipe-manager.local"
	defaultTitle   = "Recipe Manager"
)

var _ provider.Provider = (*Client)(nil)

// Client OpenRouter API 客戶端
type Client struct {
	client *resty.Client
	config provider.Config
}

type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient 創建 OpenRouter 客戶端
func NewClient(cfg provider.Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Referer == "" {
		cfg.Referer = defaultReferer
	}
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("HTTP-Referer", cfg.Referer).
		SetHeader("X-Title", cfg.Title).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	return &Client{
		client: client,
		config: cfg,
	}
}

// Generate 發送 chat completion 請求
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	start := time.Now()

	var result chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.config.Model,
			Messages:    req.Messages,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/chat/completions")
	if err != nil {
		common.LogAICall(c.config.Model, time.Since(start), err)
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("OpenRouter API returned status %d: %s", resp.StatusCode(), common.TruncateText(resp.String(), 300))
		common.LogAICall(c.config.Model, time.Since(start), err)
		return nil, err
	}

	if len(result.Choices) == 0 {
		err := fmt.Errorf("no choices in OpenRouter response")
		common.LogAICall(c.config.Model, time.Since(start), err)
		return nil, err
	}

	common.LogAICall(c.config.Model, time.Since(start), nil)
	common.LogDebug("OpenRouter usage",
		zap.Int("prompt_tokens", result.Usage.PromptTokens),
		zap.Int("completion_tokens", result.Usage.CompletionTokens),
	)

	model := result.Model
	if model == "" {
		model = c.config.Model
	}
	return &provider.Response{
		Content: result.Choices[0].Message.Content,
		Model:   model,
		Usage:   result.Usage,
	}, nil
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.config.Model
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.config.Timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
