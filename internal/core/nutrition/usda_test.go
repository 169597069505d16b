package nutrition

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{"foods":[{"fdcId":171705,"description":"Chicken, breast","brandOwner":"",
"foodNutrients":[
 {"nutrientId":1008,"value":120.7},
 {"nutrientId":1003,"value":22.456},
 {"nutrientId":1005,"value":0},
 {"nutrientId":1004,"value":2.62},
 {"nutrientId":1079,"value":0}
]}]}`

const detailBody = `{"fdcId":169756,"description":"Lemons, raw",
"foodNutrients":[
 {"nutrient":{"id":1008},"amount":29},
 {"nutrient":{"id":1003},"amount":1.1},
 {"nutrient":{"id":1005},"amount":9.32},
 {"nutrient":{"id":1079},"amount":2.8}
]}`

func newTestServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/foods/search":
			if r.URL.Query().Get("query") == "broken" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			assert.ElementsMatch(t, searchDataTypes, r.URL.Query()["dataType"])
			_, _ = w.Write([]byte(searchBody))
		case r.URL.Path == "/food/169756":
			_, _ = w.Write([]byte(detailBody))
		case strings.HasPrefix(r.URL.Path, "/food/"):
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func TestClient_SearchFood(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	c := NewClient(config.USDAConfig{APIKey: "test-key", BaseURL: srv.URL})
	foods, err := c.SearchFood(context.Background(), "chicken", 0)
	require.NoError(t, err)
	require.Len(t, foods, 1)

	f := foods[0]
	assert.Equal(t, "171705", f.FdcID)
	assert.Equal(t, "Chicken, breast", f.Description)
	assert.Equal(t, 120, f.Nutrients.Kcal)
	assert.Equal(t, 22.46, f.Nutrients.Protein)
	assert.Equal(t, 2.62, f.Nutrients.Fat)
	assert.Nil(t, f.Nutrients.Fiber)
}

func TestClient_SearchFood_Errors(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	c := NewClient(config.USDAConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := c.SearchFood(context.Background(), "  ", 0)
	assert.True(t, common.IsValidationError(err))

	_, err = c.SearchFood(context.Background(), "broken", 0)
	assert.True(t, errors.Is(err, common.ErrNutritionLookup))
}

func TestClient_GetFood(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	c := NewClient(config.USDAConfig{APIKey: "test-key", BaseURL: srv.URL})

	food, err := c.GetFood(context.Background(), "169756")
	require.NoError(t, err)
	require.NotNil(t, food)
	assert.Equal(t, "Lemons, raw", food.Description)
	assert.Equal(t, 29, food.Nutrients.Kcal)
	assert.Equal(t, 9.32, food.Nutrients.Carbs)
	require.NotNil(t, food.Nutrients.Fiber)
	assert.Equal(t, 2.8, *food.Nutrients.Fiber)

	food, err = c.GetFood(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, food)
}

func TestClient_LookupIngredients(t *testing.T) {
	var calls int32
	srv := newTestServer(t, &calls)
	defer srv.Close()

	c := NewClient(config.USDAConfig{APIKey: "test-key", BaseURL: srv.URL, Concurrency: 2})
	matches, err := c.LookupIngredients(context.Background(), []string{"chicken", "broken", "lemon"})
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	assert.Equal(t, "chicken", matches[0].Query)
	require.NotNil(t, matches[0].Food)
	assert.Equal(t, "171705", matches[0].Food.FdcID)

	assert.Nil(t, matches[1].Food)
	assert.NotEmpty(t, matches[1].Error)

	require.NotNil(t, matches[2].Food)
}
