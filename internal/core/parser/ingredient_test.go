package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-manager/internal/pkg/common"
)

func TestParseIngredientLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		want  common.ParsedIngredient
		grams *float64
	}{
		{
			name:  "unit and volume conversion",
			line:  "250 mL latte parzialmente scremato",
			want:  common.ParsedIngredient{Name: "latte parzialmente scremato", Quantity: 250, Unit: "mL"},
			grams: common.Float64Ptr(250),
		},
		{
			name:  "trailing weight takes first word as unit",
			line:  "2 uova medie 100 g",
			want:  common.ParsedIngredient{Name: "medie", Quantity: 2, Unit: "uova"},
			grams: common.Float64Ptr(100),
		},
		{
			name:  "trailing weight in kilograms",
			line:  "2 filetti di salmone 1 kg",
			want:  common.ParsedIngredient{Name: "di salmone", Quantity: 2, Unit: "filetti"},
			grams: common.Float64Ptr(1000),
		},
		{
			name:  "spoon unit",
			line:  "2 cucchiai olio extravergine",
			want:  common.ParsedIngredient{Name: "olio extravergine", Quantity: 2, Unit: "cucchiai"},
			grams: common.Float64Ptr(30),
		},
		{
			name:  "teaspoon unit",
			line:  "3 cucchiaini zucchero",
			want:  common.ParsedIngredient{Name: "zucchero", Quantity: 3, Unit: "cucchiaini"},
			grams: common.Float64Ptr(15),
		},
		{
			name:  "fractional litre",
			line:  "1/2 l brodo vegetale",
			want:  common.ParsedIngredient{Name: "brodo vegetale", Quantity: 0.5, Unit: "l"},
			grams: common.Float64Ptr(500),
		},
		{
			name:  "gram unit with trailing number in name",
			line:  "100 g farina 00",
			want:  common.ParsedIngredient{Name: "farina 00", Quantity: 100, Unit: "g"},
			grams: common.Float64Ptr(100),
		},
		{
			name:  "uppercase unit",
			line:  "200 G farina",
			want:  common.ParsedIngredient{Name: "farina", Quantity: 200, Unit: "G"},
			grams: common.Float64Ptr(200),
		},
		{
			name: "count without unit",
			line: "4 uova",
			want: common.ParsedIngredient{Name: "uova", Quantity: 4, Unit: "pz"},
		},
		{
			name: "word starting with a unit letter",
			line: "1 limone",
			want: common.ParsedIngredient{Name: "limone", Quantity: 1, Unit: "pz"},
		},
		{
			name: "name only",
			line: "Sale",
			want: common.ParsedIngredient{Name: "Sale", Quantity: 0, Unit: "q.b."},
		},
		{
			name: "decimal comma quantity",
			line: "1,5 kg patate",
			want: common.ParsedIngredient{Name: "patate", Quantity: 1.5, Unit: "kg"},
			grams: common.Float64Ptr(1500),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIngredientLine(tt.line)
			require.NotNil(t, got)

			assert.Equal(t, tt.want.Name, got.Name)
			assert.InDelta(t, tt.want.Quantity, got.Quantity, 1e-9)
			assert.Equal(t, tt.want.Unit, got.Unit)
			assert.Equal(t, tt.line, got.OriginalText)
			if tt.grams == nil {
				assert.Nil(t, got.Grams)
			} else {
				require.NotNil(t, got.Grams)
				assert.InDelta(t, *tt.grams, *got.Grams, 1e-9)
			}
		})
	}
}

func TestParseIngredientLine_TooShort(t *testing.T) {
	for _, line := range []string{"", "a ", "  ab  ", "\t"} {
		assert.Nil(t, ParseIngredientLine(line), "%q", line)
	}
}

func TestParseIngredientLine_TrimsInput(t *testing.T) {
	got := ParseIngredientLine("   2 cucchiai olio   ")
	require.NotNil(t, got)
	assert.Equal(t, "2 cucchiai olio", got.OriginalText)
	assert.Equal(t, "olio", got.Name)
}

func TestParseIngredientLine_NonBreakingSpace(t *testing.T) {
	got := ParseIngredientLine("250\u00a0g farina 00")
	require.NotNil(t, got)
	assert.Equal(t, "farina 00", got.Name)
	assert.Equal(t, 250.0, got.Quantity)
	assert.Equal(t, "g", got.Unit)
	require.NotNil(t, got.Grams)
	assert.Equal(t, 250.0, *got.Grams)
}

func TestParseIngredientLines(t *testing.T) {
	got := ParseIngredientLines([]string{"1 limone", "x", "", "Pepe nero"})
	require.Len(t, got, 2)
	assert.Equal(t, "limone", got[0].Name)
	assert.Equal(t, "Pepe nero", got[1].Name)
	assert.Equal(t, common.UnitToTaste, got[1].Unit)
}
