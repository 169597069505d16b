package database

import "strings"

// 蛋白質來源分類
const (
	ProteinFish       = "fish"
	ProteinLegumes    = "legumes"
	ProteinWhiteMeat  = "white_meat"
	ProteinEggs       = "eggs"
	ProteinDairy      = "dairy"
	ProteinPlantBased = "plant_based"
	ProteinMixed      = "mixed"
	ProteinNone       = "none"
)

// proteinRules 依序比對食譜名稱，第一個命中者勝出
var proteinRules = []struct {
	keyword string
	source  string
}{
	{"salmone", ProteinFish},
	{"tonno", ProteinFish},
	{"aringa", ProteinFish},
	{"gamberi", ProteinFish},
	{"nizzarda", ProteinFish},

	{"ceci", ProteinLegumes},
	{"fagioli", ProteinLegumes},
	{"lenticchie", ProteinLegumes},
	{"hummus", ProteinLegumes},
	{"flageolet", ProteinLegumes},

	{"pollo", ProteinWhiteMeat},
	{"wrap", ProteinWhiteMeat},
	{"spiedini", ProteinWhiteMeat},

	{"uova", ProteinEggs},
	{"frittata", ProteinEggs},
	{"pancake", ProteinEggs},

	{"yogurt", ProteinDairy},
	{"greca", ProteinDairy},

	{"tofu", ProteinPlantBased},

	{"porridge", ProteinDairy},
	{"banana burro", ProteinNone},
	{"waldorf", ProteinDairy},
	{"invernale", ProteinMixed},
	{"fagiolini", ProteinLegumes},
	{"farro", ProteinLegumes},
	{"broccoli", ProteinNone},
	{"spaghetti di riso", ProteinWhiteMeat},
	{"petto", ProteinWhiteMeat},
	{"pesto", ProteinNone},
	{"patate", ProteinMixed},
}

// DetectProteinSource 由食譜名稱推斷主要蛋白質來源，無法判斷時為 mixed
func DetectProteinSource(name string) string {
	lower := strings.ToLower(strings.ReplaceAll(name, "_", " "))

	// 「patate e tonno」以魚為主
	if strings.Contains(lower, "patate") && strings.Contains(lower, "tonno") {
		return ProteinFish
	}
	for _, r := range proteinRules {
		if strings.Contains(lower, r.keyword) {
			return r.source
		}
	}
	return ProteinMixed
}
