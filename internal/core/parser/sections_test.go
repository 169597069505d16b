package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionClassifier_Transitions(t *testing.T) {
	c := NewSectionClassifier()
	assert.Equal(t, SectionPreamble, c.Section())

	class := c.Next("Pasta al pomodoro")
	assert.Equal(t, SectionPreamble, class.Section)
	assert.False(t, class.Ingredient)
	assert.False(t, class.Step)

	class = c.Next("Ingredienti")
	assert.True(t, class.Header)
	assert.Equal(t, SectionIngredients, class.Section)

	class = c.Next("320 g spaghetti")
	assert.True(t, class.Ingredient)
	assert.False(t, class.Step)

	class = c.Next("")
	assert.False(t, class.Ingredient)

	class = c.Next("Metodo")
	assert.True(t, class.Header)
	assert.False(t, class.Ingredient)
	assert.Equal(t, SectionMethod, class.Section)

	class = c.Next("Cuocere la pasta in abbondante acqua salata.")
	assert.True(t, class.Step)
	assert.False(t, class.Ingredient)

	class = c.Next("Tabella nutrizionale")
	assert.True(t, class.Header)
	assert.Equal(t, SectionNutrition, class.Section)

	class = c.Next("Energia 400 kcal per porzione standard")
	assert.False(t, class.Step)
	assert.False(t, class.Ingredient)
}

func TestSectionClassifier_StepLength(t *testing.T) {
	c := NewSectionClassifier()
	c.Next("Method")

	short := strings.Repeat("a", 15)
	assert.False(t, c.Next(short).Step)

	exactly20 := strings.Repeat("b", 20)
	assert.False(t, c.Next(exactly20).Step)

	long := strings.Repeat("c", 25)
	assert.True(t, c.Next(long).Step)

	// 以字元計算長度，而非位元組
	accented := strings.Repeat("à", 18)
	assert.False(t, c.Next(accented).Step)
}

func TestSectionClassifier_PrimaDiEndsIngredients(t *testing.T) {
	c := NewSectionClassifier()
	c.Next("Ingredients")
	assert.True(t, c.Next("2 eggs").Ingredient)

	class := c.Next("Prima di iniziare, preparare tutto sul piano di lavoro")
	assert.True(t, class.Header)
	assert.Equal(t, SectionPreamble, class.Section)

	assert.False(t, c.Next("1 cucchiaio di zucchero").Ingredient)
}

func TestSectionClassifier_CaseSensitiveHeaders(t *testing.T) {
	c := NewSectionClassifier()
	class := c.Next("ingredienti")
	assert.False(t, class.Header)
	assert.Equal(t, SectionPreamble, class.Section)
}

func TestExtractSections(t *testing.T) {
	text := strings.Join([]string{
		"Insalata di farro",
		"Ingredienti",
		"200 g farro perlato",
		"a ",
		"1 cetriolo",
		"Metodo",
		"Sciacquare il farro e cuocerlo in acqua bollente per 25 minuti.",
		"Scolare.",
		"Condire con olio e servire a temperatura ambiente.",
		"Osservazioni",
		"Si conserva in frigorifero per due giorni al massimo.",
	}, "\n")

	ingredients, steps := ExtractSections(text)

	require.Len(t, ingredients, 2)
	assert.Equal(t, "farro perlato", ingredients[0].Name)
	assert.Equal(t, "cetriolo", ingredients[1].Name)

	require.Len(t, steps, 2)
	assert.Equal(t, "Sciacquare il farro e cuocerlo in acqua bollente per 25 minuti.", steps[0])
	assert.Equal(t, "Condire con olio e servire a temperatura ambiente.", steps[1])
}

func TestSectionClassifier_HeaderOnlyCancelsOwnSection(t *testing.T) {
	c := NewSectionClassifier()
	c.Next("Ingredienti")
	c.Next("2 uova")
	c.Next("Metodo")

	class := c.Next("Mix all the Ingredients together in a large bowl.")
	assert.True(t, class.Header)
	assert.True(t, class.Step)
	assert.False(t, class.Ingredient)
	assert.Equal(t, SectionMethod, class.Section)

	class = c.Next("Infornare a 180 gradi per quaranta minuti.")
	assert.True(t, class.Step)
	assert.True(t, class.Ingredient)
}

func TestExtractSections_StepMentioningIngredients(t *testing.T) {
	ingredients, steps := ExtractSections("Torta di mele della nonna\nIngredienti\n2 uova\nMetodo\n" +
		"Mix all the Ingredients together in a large bowl.\nInfornare a 180 gradi per quaranta minuti.\n")

	assert.Equal(t, []string{
		"Mix all the Ingredients together in a large bowl.",
		"Infornare a 180 gradi per quaranta minuti.",
	}, steps)

	require.Len(t, ingredients, 2)
	assert.Equal(t, "uova", ingredients[0].Name)
	assert.Equal(t, "Infornare a 180 gradi per quaranta minuti.", ingredients[1].Name)
}

func TestExtractSections_NoHeaders(t *testing.T) {
	ingredients, steps := ExtractSections("solo testo libero\nsenza sezioni riconoscibili nel contenuto")
	assert.Empty(t, ingredients)
	assert.Empty(t, steps)
	assert.NotNil(t, ingredients)
	assert.NotNil(t, steps)
}

func TestExtractSections_WindowsLineEndings(t *testing.T) {
	ingredients, steps := ExtractSections("Ingredienti\r\n2 cucchiai olio\r\nMetodo\r\nScaldare l'olio in una padella capiente.\r\n")
	require.Len(t, ingredients, 1)
	assert.Equal(t, "olio", ingredients[0].Name)
	require.Len(t, steps, 1)
	assert.Equal(t, "Scaldare l'olio in una padella capiente.", steps[0])
}
