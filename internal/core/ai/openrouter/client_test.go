package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-manager/internal/core/ai/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-or-test", r.Header.Get("Authorization"))
		assert.Equal(t, defaultTitle, r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"test/model","choices":[{"message":{"content":"{\"name_it\":\"Pasta\"}"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer srv.Close()

	c := NewClient(provider.Config{APIKey: "sk-or-test", Model: "test/model", BaseURL: srv.URL, Timeout: 5 * time.Second})

	resp, err := c.Generate(context.Background(), &provider.Request{
		Messages:    []provider.Message{{Role: "system", Content: "sys"}, {Role: "user", Content: "ricetta"}},
		MaxTokens:   100,
		Temperature: 0.1,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"name_it":"Pasta"}`, resp.Content)
	assert.Equal(t, "test/model", resp.Model)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	assert.Equal(t, "test/model", got.Model)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, 100, got.MaxTokens)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
}

func TestClient_Generate_Errors(t *testing.T) {
	t.Run("should fail on non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"invalid key"}}`))
		}))
		defer srv.Close()

		c := NewClient(provider.Config{BaseURL: srv.URL, Model: "m"})
		_, err := c.Generate(context.Background(), &provider.Request{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("should fail on empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		c := NewClient(provider.Config{BaseURL: srv.URL, Model: "m"})
		_, err := c.Generate(context.Background(), &provider.Request{})
		assert.Error(t, err)
	})
}

func TestClient_Accessors(t *testing.T) {
	c := NewClient(provider.Config{Model: "m", Timeout: 3 * time.Second})
	assert.Equal(t, "m", c.GetModel())
	assert.Equal(t, 3*time.Second, c.GetTimeout())
	assert.NoError(t, c.Close())
}
