package common

import "strings"

// Difficulty 食譜難度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid 檢查難度是否為已知值
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// 預設值
const (
	DefaultServings    = 4
	DefaultCategory    = "lunch"
	DefaultLLMCategory = "main_course"
	UnitPieces         = "pz"
	UnitToTaste        = "q.b."
)

// ParsedIngredient 解析後的食材行
type ParsedIngredient struct {
	Name         string   `json:"name"`
	Quantity     float64  `json:"quantity"`
	Unit         string   `json:"unit"`
	Grams        *float64 `json:"grams,omitempty"`
	OriginalText string   `json:"original_text"`
}

// HasGrams 是否已換算成公克
func (i ParsedIngredient) HasGrams() bool {
	return i.Grams != nil
}

// ParsedNutrition 每份營養資訊
type ParsedNutrition struct {
	Kcal           int      `json:"kcal"`
	Protein        float64  `json:"protein"`
	Carbs          float64  `json:"carbs"`
	Fat            float64  `json:"fat"`
	Fiber          *float64 `json:"fiber,omitempty"`
	ServingWeightG *int     `json:"serving_weight_g,omitempty"`
}

// ParsedRecipe 解析結果，文字解析與 LLM 解析共用
type ParsedRecipe struct {
	NameIT      string             `json:"name_it"`
	NameEN      *string            `json:"name_en,omitempty"`
	SourceURL   *string            `json:"source_url,omitempty"`
	Category    string             `json:"category"`
	Servings    int                `json:"servings"`
	PrepTimeMin int                `json:"prep_time_min"`
	CookTimeMin int                `json:"cook_time_min"`
	Difficulty  Difficulty         `json:"difficulty"`
	Ingredients []ParsedIngredient `json:"ingredients"`
	Steps       []string           `json:"steps"`
	Nutrition   ParsedNutrition    `json:"nutrition"`
	Tags        []string           `json:"tags"`
}

// NewParsedRecipe 建立帶有預設值的空白食譜
func NewParsedRecipe(category string) ParsedRecipe {
	return ParsedRecipe{
		Category:    category,
		Servings:    DefaultServings,
		Difficulty:  DifficultyEasy,
		Ingredients: []ParsedIngredient{},
		Steps:       []string{},
		Tags:        []string{},
	}
}

// HasName 是否偵測到食譜名稱
func (r ParsedRecipe) HasName() bool {
	return strings.TrimSpace(r.NameIT) != ""
}

// TotalTimeMin 準備與烹調時間總和
func (r ParsedRecipe) TotalTimeMin() int {
	return r.PrepTimeMin + r.CookTimeMin
}

// Float64Ptr 回傳指標
func Float64Ptr(v float64) *float64 {
	return &v
}

// IntPtr 回傳指標
func IntPtr(v int) *int {
	return &v
}

// StringPtr 回傳指標，空字串回傳 nil
func StringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
