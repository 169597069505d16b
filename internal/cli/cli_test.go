package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recipe-manager/internal/pkg/common"

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

const jsonLDPage = `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Recipe","name":"Risotto alla milanese",
 "prepTime":"PT10M","cookTime":"PT20M","recipeYield":"4 porzioni",
 "recipeIngredient":["320 g riso carnaroli","1 bustina zafferano"],
 "recipeInstructions":[{"@type":"HowToStep","text":"Tostare il riso nel burro."},{"@type":"HowToStep","text":"Aggiungere il brodo poco alla volta."}]}
</script></head><body><h1>Risotto</h1></body></html>`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := Command()
	cmd.Reader = strings.NewReader(stdin)
	cmd.Writer = &out
	cmd.ErrWriter = &bytes.Buffer{}
	err := cmd.Run(context.Background(), append([]string{name}, args...))
	return out.String(), err
}

func useTempDatabase(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", filepath.Join(t.TempDir(), "recipes.db"))
	t.Setenv("LLM_ENABLED", "false")
}

func TestParse_Text(t *testing.T) {
	out, err := run(t, pastedRecipe, "parse")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:       Pasta e ceci alla romana")
	assert.Contains(t, out, "Prep time:  15 min")
	assert.Contains(t, out, "Ingredients (3):")
	assert.Contains(t, out, "- pasta corta: 320 g (320g)")
	assert.Contains(t, out, "- sale: q.b.")
	assert.Contains(t, out, "2. Aggiungere la pasta")
}

func TestParse_JSONFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ricetta.txt")
	require.NoError(t, os.WriteFile(path, []byte(pastedRecipe), 0o644))

	out, err := run(t, "", "parse", "--format", "json", path)
	require.NoError(t, err)

	var r common.ParsedRecipe
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "Pasta e ceci alla romana", r.NameIT)
	assert.Equal(t, 480, r.Nutrition.Kcal)
}

func TestParse_Errors(t *testing.T) {
	_, err := run(t, "  \n", "parse")
	assert.True(t, errors.Is(err, common.ErrEmptyInput))

	_, err = run(t, pastedRecipe, "parse", "--format", "yaml")
	assert.Error(t, err)

	_, err = run(t, "", "parse", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	// 沒有名稱時仍輸出解析結果
	out, err := run(t, "1\n2\n3", "parse")
	assert.True(t, errors.Is(err, common.ErrNoRecipeName))
	assert.Contains(t, out, "(no name detected)")
}

func TestParse_LLMDisabled(t *testing.T) {
	useTempDatabase(t)
	_, err := run(t, pastedRecipe, "parse", "--llm")
	assert.True(t, errors.Is(err, common.ErrLLMDisabled))
}

func TestSaveAndList(t *testing.T) {
	useTempDatabase(t)

	out, err := run(t, pastedRecipe, "save", "--category", "dinner")
	require.NoError(t, err)
	assert.Contains(t, out, `Saved "Pasta e ceci alla romana" (dinner)`)

	out, err = run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Pasta e ceci alla romana")
	assert.Contains(t, out, "55 min")

	out, err = run(t, "", "list", "--category", "lunch")
	require.NoError(t, err)
	assert.Contains(t, out, "No recipes found.")

	out, err = run(t, "", "list", "--format", "json")
	require.NoError(t, err)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "pasta-e-ceci-alla-romana", rows[0]["slug"])
}

func TestSave_Errors(t *testing.T) {
	useTempDatabase(t)

	_, err := run(t, pastedRecipe, "save", "--producer", "url")
	assert.Error(t, err)

	_, err = run(t, pastedRecipe, "save", "--producer", "llm")
	assert.True(t, errors.Is(err, common.ErrLLMDisabled))

	_, err = run(t, "1\n2\n3", "save")
	assert.True(t, errors.Is(err, common.ErrNoRecipeName))
}

func TestImportURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(jsonLDPage))
	}))
	defer srv.Close()

	out, err := run(t, "", "import-url", srv.URL+"/risotto")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:       Risotto alla milanese")
	assert.Contains(t, out, "Source:     "+srv.URL+"/risotto")
	assert.Contains(t, out, "- riso carnaroli: 320 g (320g)")

	useTempDatabase(t)
	out, err = run(t, "", "import-url", "--save", "--format", "json", srv.URL+"/risotto")
	require.NoError(t, err)
	var saved struct {
		ID     string              `json:"id"`
		Recipe common.ParsedRecipe `json:"recipe"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, 30, saved.Recipe.TotalTimeMin())

	_, err = run(t, "", "import-url")
	assert.Error(t, err)
}

func TestNutritionSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foods/search", r.URL.Path)
		assert.Equal(t, "ceci", r.URL.Query().Get("query"))
		assert.Equal(t, "3", r.URL.Query().Get("pageSize"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"foods":[{"fdcId":173756,"description":"Chickpeas, mature seeds, cooked, boiled",
			"foodNutrients":[{"nutrientId":1008,"value":164},{"nutrientId":1003,"value":8.86}]}]}`))
	}))
	defer srv.Close()

	t.Setenv("USDA_API_KEY", "DEMO_KEY")
	t.Setenv("APP_USDA_BASE_URL", srv.URL)

	out, err := run(t, "", "nutrition", "search", "--limit", "3", "ceci")
	require.NoError(t, err)
	assert.Contains(t, out, "173756")
	assert.Contains(t, out, "164")
	assert.Contains(t, out, "8.86g")

	t.Setenv("USDA_API_KEY", "")
	_, err = run(t, "", "nutrition", "search", "ceci")
	assert.Error(t, err)
}
