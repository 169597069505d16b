package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ProcessesJobs(t *testing.T) {
	handler := func(ctx context.Context, producer, input string) (common.ParsedRecipe, error) {
		if input == "" {
			return common.ParsedRecipe{}, common.ErrEmptyInput
		}
		r := common.NewParsedRecipe(common.DefaultCategory)
		r.NameIT = producer + ":" + input
		return r, nil
	}

	m := NewManager(config.QueueConfig{Workers: 2, MaxSize: 10}, handler)
	defer m.Close()

	ctx := context.Background()
	ok, err := m.Enqueue(ctx, "text", "Pasta al forno")
	require.NoError(t, err)
	bad, err := m.Enqueue(ctx, "text", "")
	require.NoError(t, err)

	res := <-ok
	require.NoError(t, res.Error)
	assert.Equal(t, "text:Pasta al forno", res.Recipe.NameIT)

	res = <-bad
	assert.True(t, errors.Is(res.Error, common.ErrEmptyInput))

	m.Close()
	status := m.GetQueueStatus()
	assert.Equal(t, 2, status.ProcessedCount)
	assert.Equal(t, 1, status.FailedCount)
	assert.Equal(t, 2, status.Workers)
}

func TestManager_QueueFull(t *testing.T) {
	block := make(chan struct{})
	var once sync.Once
	started := make(chan struct{})
	handler := func(ctx context.Context, producer, input string) (common.ParsedRecipe, error) {
		once.Do(func() { close(started) })
		<-block
		return common.ParsedRecipe{}, nil
	}

	m := NewManager(config.QueueConfig{Workers: 1, MaxSize: 1}, handler)

	_, err := m.Enqueue(context.Background(), "text", "a")
	require.NoError(t, err)
	<-started // worker 已取出第一個工作

	_, err = m.Enqueue(context.Background(), "text", "b")
	require.NoError(t, err)

	_, err = m.Enqueue(context.Background(), "text", "c")
	assert.True(t, errors.Is(err, common.ErrQueueFull))

	close(block)
	m.Close()
}

func TestManager_EnqueueAfterClose(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 1, MaxSize: 1}, func(ctx context.Context, producer, input string) (common.ParsedRecipe, error) {
		return common.ParsedRecipe{}, nil
	})
	m.Close()

	_, err := m.Enqueue(context.Background(), "text", "a")
	assert.Error(t, err)
}
