package nutrition

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL     = "https://api.nal.usda.gov/fdc/v1"
	defaultPageSize    = 10
	defaultConcurrency = 4
)

// USDA 營養素 ID
const (
	nutrientEnergy  = 1008 // kcal
	nutrientProtein = 1003 // g
	nutrientCarbs   = 1005 // g
	nutrientFat     = 1004 // g
	nutrientFiber   = 1079 // g
)

var searchDataTypes = []string{"Foundation", "SR Legacy", "Survey (FNDDS)"}

// Nutrients 每 100g 營養值
type Nutrients struct {
	Kcal    int      `json:"kcal"`
	Protein float64  `json:"protein"`
	Carbs   float64  `json:"carbs"`
	Fat     float64  `json:"fat"`
	Fiber   *float64 `json:"fiber,omitempty"`
}

// Food USDA 食物項目
type Food struct {
	FdcID       string    `json:"fdc_id"`
	Description string    `json:"description"`
	BrandOwner  string    `json:"brand_owner,omitempty"`
	Nutrients   Nutrients `json:"nutrients"`
}

// Match 食材名稱與最佳候選
type Match struct {
	Query string `json:"query"`
	Food  *Food  `json:"food,omitempty"`
	Error string `json:"error,omitempty"`
}

// foodNutrient 同時涵蓋搜尋與明細兩種格式
type foodNutrient struct {
	NutrientID int     `json:"nutrientId"`
	Value      float64 `json:"value"`
	Amount     float64 `json:"amount"`
	Nutrient   struct {
		ID int `json:"id"`
	} `json:"nutrient"`
}

type foodItem struct {
	FdcID         int            `json:"fdcId"`
	Description   string         `json:"description"`
	BrandOwner    string         `json:"brandOwner"`
	FoodNutrients []foodNutrient `json:"foodNutrients"`
}

type searchResponse struct {
	Foods []foodItem `json:"foods"`
}

// Client USDA FoodData Central 客戶端
type Client struct {
	client      *resty.Client
	apiKey      string
	pageSize    int
	concurrency int
}

// NewClient 創建 USDA 客戶端
func NewClient(cfg config.USDAConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		client: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		apiKey:      cfg.APIKey,
		pageSize:    cfg.PageSize,
		concurrency: cfg.Concurrency,
	}
}

// SearchFood 依名稱搜尋食物；pageSize <= 0 時使用設定值
func (c *Client) SearchFood(ctx context.Context, query string, pageSize int) ([]Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.NewValidationError("query is required")
	}
	if pageSize <= 0 {
		pageSize = c.pageSize
	}

	var out searchResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetQueryParam("api_key", c.apiKey).
		SetQueryParam("pageSize", strconv.Itoa(pageSize)).
		SetQueryParamsFromValues(map[string][]string{"dataType": searchDataTypes}).
		SetResult(&out).
		Get("/foods/search")
	if err != nil {
		return nil, common.ErrNutritionLookup.Wrap(err)
	}
	if resp.IsError() {
		return nil, common.ErrNutritionLookup.Wrap(fmt.Errorf("USDA search returned HTTP %d", resp.StatusCode()))
	}

	foods := make([]Food, 0, len(out.Foods))
	for _, item := range out.Foods {
		foods = append(foods, item.toFood())
	}
	return foods, nil
}

// GetFood 依 FDC ID 取得明細；不存在時回傳 nil, nil
func (c *Client) GetFood(ctx context.Context, fdcID string) (*Food, error) {
	var out foodItem
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", strings.TrimSpace(fdcID)).
		SetQueryParam("api_key", c.apiKey).
		SetResult(&out).
		Get("/food/{id}")
	if err != nil {
		return nil, common.ErrNutritionLookup.Wrap(err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, common.ErrNutritionLookup.Wrap(fmt.Errorf("USDA food returned HTTP %d", resp.StatusCode()))
	}

	food := out.toFood()
	return &food, nil
}

// LookupIngredients 並行搜尋每個名稱並取第一筆結果。
// 單一名稱查詢失敗只記錄在該筆 Match，不影響其他名稱。
func (c *Client) LookupIngredients(ctx context.Context, names []string) ([]Match, error) {
	matches := make([]Match, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, name := range names {
		i, name := i, name
		matches[i].Query = name
		g.Go(func() error {
			foods, err := c.SearchFood(gctx, name, 1)
			if err != nil {
				matches[i].Error = err.Error()
				common.LogWarn("USDA 查詢失敗", zap.String("query", name), zap.Error(err))
				return nil
			}
			if len(foods) > 0 {
				matches[i].Food = &foods[0]
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return matches, err
	}
	return matches, nil
}

func (f foodItem) toFood() Food {
	return Food{
		FdcID:       strconv.Itoa(f.FdcID),
		Description: descriptionOrDefault(f.Description),
		BrandOwner:  f.BrandOwner,
		Nutrients:   extractNutrients(f.FoodNutrients),
	}
}

func descriptionOrDefault(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// extractNutrients 取出熱量、蛋白質、碳水、脂肪與纖維
func extractNutrients(list []foodNutrient) Nutrients {
	var n Nutrients
	for _, fn := range list {
		id := fn.NutrientID
		if id == 0 {
			id = fn.Nutrient.ID
		}
		amount := fn.Value
		if amount == 0 {
			amount = fn.Amount
		}

		switch id {
		case nutrientEnergy:
			n.Kcal = int(amount)
		case nutrientProtein:
			n.Protein = common.Round2(amount)
		case nutrientCarbs:
			n.Carbs = common.Round2(amount)
		case nutrientFat:
			n.Fat = common.Round2(amount)
		case nutrientFiber:
			if amount != 0 {
				n.Fiber = common.Float64Ptr(common.Round2(amount))
			}
		}
	}
	return n
}
