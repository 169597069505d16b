package recipe

import (
	"context"
	"strings"

	"recipe-manager/internal/core/parser"
	"recipe-manager/internal/pkg/common"
)

// 解析來源名稱
const (
	ProducerText = "text"
	ProducerURL  = "url"
	ProducerLLM  = "llm"
)

// Producer 將輸入轉換為 ParsedRecipe 的來源
type Producer interface {
	Name() string
	Produce(ctx context.Context, input string) (common.ParsedRecipe, error)
}

// TextProducer 以規則引擎解析貼上的文字
type TextProducer struct{}

func (TextProducer) Name() string { return ProducerText }

func (TextProducer) Produce(ctx context.Context, input string) (common.ParsedRecipe, error) {
	return parser.ParseRecipeText(input), nil
}

// Scraper 抓取網頁並轉換為食譜
type Scraper interface {
	Scrape(ctx context.Context, url string) (common.ParsedRecipe, error)
}

// URLProducer 以網頁抓取作為來源
type URLProducer struct {
	scraper Scraper
}

// NewURLProducer 創建網址來源
func NewURLProducer(s Scraper) *URLProducer {
	return &URLProducer{scraper: s}
}

func (p *URLProducer) Name() string { return ProducerURL }

func (p *URLProducer) Produce(ctx context.Context, input string) (common.ParsedRecipe, error) {
	url := strings.TrimSpace(input)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return common.ParsedRecipe{}, common.NewValidationError("url must start with http:// or https://")
	}
	return p.scraper.Scrape(ctx, url)
}
