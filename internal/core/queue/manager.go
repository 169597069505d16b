package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// Job 批次解析工作
type Job struct {
	Context  context.Context
	Producer string
	Input    string
	Result   chan Result
}

// Result 處理結果
type Result struct {
	Recipe common.ParsedRecipe
	Error  error
}

// Handler 處理單一工作
type Handler func(ctx context.Context, producer, input string) (common.ParsedRecipe, error)

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	FailedCount    int `json:"failed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 隊列管理器：固定數量的 worker 消化有界隊列
type Manager struct {
	config    config.QueueConfig
	queue     chan *Job
	mu        sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
	processed int64
	failed    int64
}

// NewManager 創建隊列並啟動 worker
func NewManager(cfg config.QueueConfig, handler Handler) *Manager {
	m := &Manager{
		config: cfg,
		queue:  make(chan *Job, cfg.MaxSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i, handler)
	}

	common.LogInfo("批次隊列已啟動",
		zap.Int("workers", cfg.Workers),
		zap.Int("max_queue_size", cfg.MaxSize),
	)
	return m
}

func (m *Manager) worker(id int, handler Handler) {
	defer m.wg.Done()

	for job := range m.queue {
		if err := job.Context.Err(); err != nil {
			job.Result <- Result{Error: err}
			atomic.AddInt64(&m.failed, 1)
			continue
		}

		recipe, err := handler(job.Context, job.Producer, job.Input)
		if err != nil {
			atomic.AddInt64(&m.failed, 1)
			common.LogDebug("批次工作失敗",
				zap.Int("worker", id),
				zap.String("producer", job.Producer),
				zap.Error(err),
			)
		}
		atomic.AddInt64(&m.processed, 1)
		job.Result <- Result{Recipe: recipe, Error: err}
	}
}

// Enqueue 將工作加入隊列；隊列滿時立即失敗
func (m *Manager) Enqueue(ctx context.Context, producer, input string) (<-chan Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("queue manager is closed")
	}

	job := &Job{
		Context:  ctx,
		Producer: producer,
		Input:    input,
		Result:   make(chan Result, 1),
	}

	select {
	case m.queue <- job:
		common.LogDebug("Job enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
		return job.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, common.ErrQueueFull
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		FailedCount:    int(atomic.LoadInt64(&m.failed)),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
	}
}

// Close 停止接收新工作並等待 worker 完成
func (m *Manager) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()
	m.wg.Wait()
}
