package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"recipe-manager/internal/core/parser"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const minStepLen = 20

// site 站點專屬的選擇器，依序嘗試，第一個有結果的勝出
type site struct {
	name        string
	ingredients []selector
	steps       []selector
}

var (
	genericIngredientSelectors = []selector{
		{scope: class("recipe-ingredients"), item: tag("li")},
		{scope: class("ingredients"), item: tag("li")},
		{scope: classLike("ingredient"), item: tag("li")},
		{scope: allOf(tag("ul"), class("ingredients")), item: tag("li")},
	}
	genericStepSelectors = []selector{
		{scope: class("recipe-method"), item: tag("li")},
		{scope: class("method"), item: tag("li")},
		{scope: class("instructions"), item: tag("li")},
		{item: classLike("step")},
	}

	sosCuisine = site{
		name:        "soscuisine",
		ingredients: genericIngredientSelectors,
		steps:       genericStepSelectors,
	}
	gialloZafferano = site{
		name:        "giallozafferano",
		ingredients: []selector{{item: class("gz-ingredient")}},
		steps:       []selector{{item: class("gz-content-recipe-step")}},
	}
	genericSite = site{
		name:        "generic",
		ingredients: genericIngredientSelectors,
		steps:       genericStepSelectors,
	}
)

// Scraper 抓取食譜網頁
type Scraper struct {
	fetcher *Fetcher
}

// New 創建爬蟲
func New(cfg config.ScraperConfig) *Scraper {
	return &Scraper{fetcher: NewFetcher(cfg)}
}

// Scrape 下載並解析頁面
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (common.ParsedRecipe, error) {
	content, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return common.ParsedRecipe{}, err
	}
	return ParseHTML(pageURL, content)
}

// ParseHTML 依網址所屬站點解析 HTML
func ParseHTML(pageURL, content string) (common.ParsedRecipe, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return common.ParsedRecipe{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	host := hostOf(pageURL)
	switch {
	case strings.Contains(host, "soscuisine.com"):
		return parseSite(doc, pageURL, sosCuisine), nil
	case strings.Contains(host, "giallozafferano"):
		return parseSite(doc, pageURL, gialloZafferano), nil
	}

	if data := findJSONLDRecipe(doc); data != nil {
		r := recipeFromJSONLD(data, pageURL)
		if r.NameIT == "" {
			if h1 := findFirst(doc, tag("h1")); h1 != nil {
				r.NameIT = nodeText(h1)
			}
		}
		common.LogDebug("使用 JSON-LD 解析", zap.String("url", pageURL))
		return r, nil
	}
	return parseSite(doc, pageURL, genericSite), nil
}

// parseSite 以選擇器取得食材與步驟，其餘欄位與回退交給文字解析
func parseSite(doc *html.Node, pageURL string, s site) common.ParsedRecipe {
	pageText := flattenText(doc)
	r := parser.ParseRecipeText(pageText)
	r.SourceURL = common.StringPtr(pageURL)

	if h1 := findFirst(doc, tag("h1")); h1 != nil {
		if name := nodeText(h1); name != "" {
			r.NameIT = name
		}
	}

	if items := selectFirst(doc, s.ingredients); len(items) > 0 {
		lines := make([]string, 0, len(items))
		for _, n := range items {
			lines = append(lines, nodeText(n))
		}
		if parsed := parser.ParseIngredientLines(lines); len(parsed) > 0 {
			r.Ingredients = parsed
		}
	}

	if items := selectFirst(doc, s.steps); len(items) > 0 {
		var steps []string
		for _, n := range items {
			if text := nodeText(n); utf8.RuneCountInString(text) > minStepLen {
				steps = append(steps, text)
			}
		}
		if len(steps) > 0 {
			r.Steps = steps
		}
	}

	common.LogDebug("網頁解析完成",
		zap.String("site", s.name),
		zap.Int("ingredients", len(r.Ingredients)),
		zap.Int("steps", len(r.Steps)),
	)
	return r
}

func selectFirst(doc *html.Node, selectors []selector) []*html.Node {
	for _, sel := range selectors {
		if nodes := sel.selectFrom(doc); len(nodes) > 0 {
			return nodes
		}
	}
	return nil
}

func hostOf(pageURL string) string {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
