package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipe-manager/internal/core/queue"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
	"recipe-manager/internal/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store 持久化解析結果
type Store interface {
	SaveParsedRecipe(ctx context.Context, r common.ParsedRecipe, category string) (uuid.UUID, error)
}

// BatchItem 批次解析的單筆結果
type BatchItem struct {
	Index  int                  `json:"index"`
	Recipe *common.ParsedRecipe `json:"recipe,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Service 食譜解析服務：依來源解析、驗證並儲存
type Service struct {
	producers map[string]Producer
	store     Store
	queue     *queue.Manager
}

// NewService 創建食譜服務；store 可為 nil（僅解析）
func NewService(store Store, producers ...Producer) *Service {
	s := &Service{
		producers: make(map[string]Producer, len(producers)),
		store:     store,
	}
	for _, p := range producers {
		s.producers[p.Name()] = p
	}
	return s
}

// StartQueue 啟動批次隊列
func (s *Service) StartQueue(cfg config.QueueConfig) *queue.Manager {
	s.queue = queue.NewManager(cfg, s.Parse)
	return s.queue
}

// Parse 以指定來源解析輸入。名稱缺失時仍回傳解析結果，並附上 ErrNoRecipeName
func (s *Service) Parse(ctx context.Context, producer, input string) (common.ParsedRecipe, error) {
	start := time.Now()
	if strings.TrimSpace(input) == "" {
		metrics.ObserveParse(producer, metrics.OutcomeEmpty, time.Since(start))
		return common.ParsedRecipe{}, common.ErrEmptyInput
	}

	p, ok := s.producers[producer]
	if !ok {
		return common.ParsedRecipe{}, common.ErrInvalidRequest.Wrap(fmt.Errorf("unknown producer %q", producer))
	}

	r, err := p.Produce(ctx, input)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveParse(producer, metrics.OutcomeError, elapsed)
		common.LogWarn("食譜解析失敗",
			zap.String("producer", producer),
			zap.Error(err),
		)
		return common.ParsedRecipe{}, err
	}

	metrics.AddIngredientFallbacks(producer, countFallbacks(r.Ingredients))
	common.LogParseResult(producer, r, elapsed)

	if !r.HasName() {
		metrics.ObserveParse(producer, metrics.OutcomeNoName, elapsed)
		return r, common.ErrNoRecipeName
	}
	metrics.ObserveParse(producer, metrics.OutcomeSuccess, elapsed)
	return r, nil
}

// Import 解析後儲存，回傳新食譜 ID
func (s *Service) Import(ctx context.Context, producer, input, category string) (uuid.UUID, common.ParsedRecipe, error) {
	if s.store == nil {
		return uuid.Nil, common.ParsedRecipe{}, common.ErrServiceUnavailable.Wrap(errors.New("no recipe store configured"))
	}

	r, err := s.Parse(ctx, producer, input)
	if err != nil {
		return uuid.Nil, r, err
	}
	return s.Save(ctx, r, category)
}

// Save 儲存已解析的食譜；category 為空時沿用解析結果
func (s *Service) Save(ctx context.Context, r common.ParsedRecipe, category string) (uuid.UUID, common.ParsedRecipe, error) {
	if s.store == nil {
		return uuid.Nil, r, common.ErrServiceUnavailable.Wrap(errors.New("no recipe store configured"))
	}
	if !r.HasName() {
		return uuid.Nil, r, common.ErrNoRecipeName
	}
	if category = strings.TrimSpace(category); category == "" {
		category = r.Category
	}
	r.Category = category

	id, err := s.store.SaveParsedRecipe(ctx, r, category)
	if err != nil {
		return uuid.Nil, r, err
	}
	metrics.IncRecipesSaved()
	common.LogInfo("食譜已儲存",
		zap.String("id", id.String()),
		zap.String("name", r.NameIT),
		zap.String("category", category),
	)
	return id, r, nil
}

// Batch 透過隊列解析多筆輸入；未啟動隊列時依序處理
func (s *Service) Batch(ctx context.Context, producer string, inputs []string) []BatchItem {
	items := make([]BatchItem, len(inputs))
	if s.queue == nil {
		for i, in := range inputs {
			r, err := s.Parse(ctx, producer, in)
			items[i] = toBatchItem(i, r, err)
		}
		return items
	}

	pending := make([]<-chan queue.Result, len(inputs))
	for i, in := range inputs {
		ch, err := s.queue.Enqueue(ctx, producer, in)
		if err != nil {
			items[i] = BatchItem{Index: i, Error: err.Error()}
			continue
		}
		pending[i] = ch
	}

	for i, ch := range pending {
		if ch == nil {
			continue
		}
		select {
		case res := <-ch:
			items[i] = toBatchItem(i, res.Recipe, res.Error)
		case <-ctx.Done():
			items[i] = BatchItem{Index: i, Error: ctx.Err().Error()}
		}
	}
	return items
}

// QueueStatus 批次隊列狀態；未啟動時為 nil
func (s *Service) QueueStatus() *queue.Status {
	if s.queue == nil {
		return nil
	}
	return s.queue.GetQueueStatus()
}

// HasProducer 檢查來源是否可用
func (s *Service) HasProducer(name string) bool {
	p, ok := s.producers[name]
	if !ok {
		return false
	}
	if llm, isLLM := p.(*LLMProducer); isLLM {
		return llm.Enabled()
	}
	return true
}

func toBatchItem(i int, r common.ParsedRecipe, err error) BatchItem {
	item := BatchItem{Index: i}
	if err != nil {
		item.Error = err.Error()
		// 缺少名稱仍保留解析內容
		if !errors.Is(err, common.ErrNoRecipeName) {
			return item
		}
	}
	item.Recipe = &r
	return item
}

func countFallbacks(ingredients []common.ParsedIngredient) int {
	n := 0
	for _, ing := range ingredients {
		if ing.Unit == common.UnitToTaste {
			n++
		}
	}
	return n
}
