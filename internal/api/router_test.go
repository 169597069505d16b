package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	imageService "recipe-manager/internal/core/image"
	"recipe-manager/internal/core/nutrition"
	recipeService "recipe-manager/internal/core/recipe"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/infrastructure/database"
	"recipe-manager/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pastedRecipe = `Pasta e ceci alla romana
Preparazione: 15 min
Cottura: 40 min
Porzioni: 4
Ingredienti
320 g pasta corta
1 cucchiaio olio extravergine
sale
Metodo
Scolare i ceci e metterli in pentola con il rosmarino.
Aggiungere la pasta e cuocere per dieci minuti.
Tabella nutrizionale
Calorie 480 kcal
`

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeScraper struct{}

func (fakeScraper) Scrape(ctx context.Context, url string) (common.ParsedRecipe, error) {
	if strings.Contains(url, "missing") {
		return common.ParsedRecipe{}, common.ErrFetchFailed.Wrap(errors.New("status 404"))
	}
	r := common.NewParsedRecipe(common.DefaultCategory)
	r.NameIT = "Risotto ai funghi"
	r.SourceURL = common.StringPtr(url)
	return r, nil
}

type fakeNutrition struct{}

func (fakeNutrition) SearchFood(ctx context.Context, query string, pageSize int) ([]nutrition.Food, error) {
	return []nutrition.Food{{FdcID: "170379", Description: "Chickpeas, mature seeds, cooked"}}, nil
}

func (fakeNutrition) GetFood(ctx context.Context, fdcID string) (*nutrition.Food, error) {
	if fdcID != "170379" {
		return nil, nil
	}
	return &nutrition.Food{FdcID: fdcID, Description: "Chickpeas", Nutrients: nutrition.Nutrients{Kcal: 164}}, nil
}

func (fakeNutrition) LookupIngredients(ctx context.Context, names []string) ([]nutrition.Match, error) {
	out := make([]nutrition.Match, len(names))
	for i, n := range names {
		out[i] = nutrition.Match{Query: n, Food: &nutrition.Food{FdcID: "1", Description: n}}
	}
	return out, nil
}

type fakeUploader struct {
	slug string
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, slug string) (string, error) {
	f.slug = slug
	return "https://cdn.example.com/recipes/" + slug + ".jpg", nil
}

type testServer struct {
	router   *gin.Engine
	store    *database.Store
	uploader *fakeUploader
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	cfg.DedupWindow = time.Nanosecond

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store := database.NewStore(db)
	svc := recipeService.NewService(store,
		recipeService.TextProducer{},
		recipeService.NewURLProducer(fakeScraper{}),
		recipeService.NewLLMProducer(nil),
	)
	uploader := &fakeUploader{}

	router := SetupRouter(cfg, Dependencies{
		Recipes:   svc,
		Store:     store,
		Nutrition: fakeNutrition{},
		Images:    imageService.NewService(cfg.Image),
		Uploader:  uploader,
		Ping:      func(ctx context.Context) error { return database.Ping(ctx, db) },
	})
	return &testServer{router: router, store: store, uploader: uploader}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthEndpoints(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	decode(t, w, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "ok", health["database"])
	producers := health["producers"].(map[string]interface{})
	assert.Equal(t, true, producers["text"])
	assert.Equal(t, false, producers["llm"])

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/ready", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/live", nil).Code)
	assert.NotEmpty(t, s.do(t, http.MethodGet, "/health", nil).Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestServer(t)
	s.do(t, http.MethodGet, "/live", nil)

	w := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipe_http_requests_total")
}

func TestParseText(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/recipes/parse", gin.H{"text": pastedRecipe})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var r common.ParsedRecipe
	decode(t, w, &r)
	assert.Equal(t, "Pasta e ceci alla romana", r.NameIT)
	assert.Equal(t, 15, r.PrepTimeMin)
	assert.Len(t, r.Ingredients, 3)
	assert.Equal(t, 480, r.Nutrition.Kcal)
}

func TestParseText_Errors(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/recipes/parse", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/recipes/parse", gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "EMPTY_INPUT")

	w = s.do(t, http.MethodPost, "/api/v1/recipes/parse", gin.H{"text": "1\n2\n3"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp map[string]interface{}
	decode(t, w, &resp)
	assert.Equal(t, "NO_RECIPE_NAME", resp["code"])
	assert.Contains(t, resp, "recipe")
}

func TestParseURL(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/recipes/parse/url", gin.H{"url": "https://www.giallozafferano.it/risotto"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var r common.ParsedRecipe
	decode(t, w, &r)
	assert.Equal(t, "Risotto ai funghi", r.NameIT)

	w = s.do(t, http.MethodPost, "/api/v1/recipes/parse/url", gin.H{"url": "ftp://example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/recipes/parse/url", gin.H{"url": "https://example.com/missing"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestParseLLM_Disabled(t *testing.T) {
	s := setupTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/recipes/parse/llm", gin.H{"text": pastedRecipe})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "LLM_DISABLED")
}

func TestImportListGet(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/recipes", gin.H{"input": pastedRecipe, "category": "dinner"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID     uuid.UUID           `json:"id"`
		Recipe common.ParsedRecipe `json:"recipe"`
	}
	decode(t, w, &created)
	require.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "dinner", created.Recipe.Category)
	assert.Equal(t, "/api/v1/recipes/"+created.ID.String(), w.Header().Get("Location"))

	w = s.do(t, http.MethodPost, "/api/v1/recipes", gin.H{"producer": "url", "input": "https://www.soscuisine.com/risotto"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/recipes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count   int               `json:"count"`
		Recipes []database.Recipe `json:"recipes"`
	}
	decode(t, w, &list)
	assert.Equal(t, 2, list.Count)

	w = s.do(t, http.MethodGet, "/api/v1/recipes?category=dinner", nil)
	decode(t, w, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "pasta-e-ceci-alla-romana", list.Recipes[0].Slug)

	w = s.do(t, http.MethodGet, "/api/v1/recipes/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got database.Recipe
	decode(t, w, &got)
	assert.Equal(t, "Pasta e ceci alla romana", got.NameIT)
	assert.Len(t, got.Ingredients, 3)
	assert.Len(t, got.Steps, 2)
	assert.Equal(t, 55, got.TotalTimeMin)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/recipes/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/recipes/not-a-uuid", nil).Code)
}

func TestImport_Errors(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/recipes", gin.H{"producer": "fax", "input": pastedRecipe})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/recipes", gin.H{"producer": "llm", "input": pastedRecipe})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/recipes", gin.H{"input": "1\n2\n3"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBatch(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/recipes/batch", gin.H{
		"inputs": []string{pastedRecipe, "", "Zuppa di farro\nIngredienti\n200 g farro"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Items     []recipeService.BatchItem `json:"items"`
		Succeeded int                       `json:"succeeded"`
		Failed    int                       `json:"failed"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, "Pasta e ceci alla romana", resp.Items[0].Recipe.NameIT)
	assert.NotEmpty(t, resp.Items[1].Error)
	assert.Equal(t, "Zuppa di farro", resp.Items[2].Recipe.NameIT)

	w = s.do(t, http.MethodPost, "/api/v1/recipes/batch", gin.H{"inputs": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseIngredient(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/ingredients/parse", gin.H{"line": "2 cucchiai olio extravergine"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Ingredients []common.ParsedIngredient `json:"ingredients"`
		Skipped     int                       `json:"skipped"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Ingredients, 1)
	assert.Equal(t, "olio extravergine", resp.Ingredients[0].Name)
	assert.Equal(t, 2.0, resp.Ingredients[0].Quantity)

	w = s.do(t, http.MethodPost, "/api/v1/ingredients/parse", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNutritionEndpoints(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/nutrition/search?q=ceci", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "170379")

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/nutrition/search", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/nutrition/search?q=ceci&page_size=0", nil).Code)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/nutrition/foods/170379", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/nutrition/foods/1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/nutrition/foods/abc", nil).Code)

	w = s.do(t, http.MethodPost, "/api/v1/nutrition/lookup", gin.H{
		"names": []string{"ceci"},
		"lines": []string{"320 g pasta corta"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Matches []nutrition.Match `json:"matches"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "ceci", resp.Matches[0].Query)
	assert.Equal(t, "pasta corta", resp.Matches[1].Query)

	w = s.do(t, http.MethodPost, "/api/v1/nutrition/lookup", gin.H{"names": []string{" "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func samplePNGDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestImageUpload(t *testing.T) {
	s := setupTestServer(t)

	id, err := s.store.SaveParsedRecipe(context.Background(), func() common.ParsedRecipe {
		r := common.NewParsedRecipe(common.DefaultCategory)
		r.NameIT = "Torta di mele"
		return r
	}(), "")
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/v1/images", gin.H{"image": samplePNGDataURI(t), "recipe_id": id.String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "torta-di-mele", s.uploader.slug)

	got, err := s.store.GetRecipe(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, "https://cdn.example.com/recipes/torta-di-mele.jpg", *got.ImageURL)

	w = s.do(t, http.MethodPost, "/api/v1/images", gin.H{"image": "not-an-image"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/images", gin.H{"image": samplePNGDataURI(t), "recipe_id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
