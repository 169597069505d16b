package recipe

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"recipe-manager/internal/core/ai/service"
	"recipe-manager/internal/core/parser"
	"recipe-manager/internal/pkg/common"
)

const llmSystemPrompt = `You are a recipe parser. Extract structured data from recipe text and output valid JSON.

OUTPUT FORMAT (strict JSON, nothing else):
{
  "name_it": "Nome italiano della ricetta",
  "name_en": "English recipe name",
  "slug": "nome-ricetta-lowercase-with-dashes",
  "description_it": "Breve descrizione in italiano",
  "description_en": "Short description in English",
  "category": "breakfast|main_course|snack",
  "servings": 4,
  "prep_time_min": 15,
  "cook_time_min": 30,
  "difficulty": "easy|medium|hard",
  "kcal_per_100g": 150,
  "protein_per_100g": 8.5,
  "carbs_per_100g": 20.0,
  "fat_per_100g": 5.2,
  "fiber_per_100g": 2.0,
  "kcal_per_serving": 450,
  "serving_weight_g": 300,
  "ingredients": [
    {"name_it": "pasta", "name_en": "pasta", "quantity": 100, "unit": "g", "notes_it": "preferibilmente integrale", "notes_en": "preferably whole wheat"}
  ],
  "steps": [
    {"step_number": 1, "instruction_it": "Cuocere la pasta in acqua salata", "instruction_en": "Cook pasta in salted water"}
  ],
  "tags": ["halal", "vegetarian", "gluten-free"]
}

RULES:
1. All fields are required. Never return null; use a reasonable default or an empty list/string.
2. If nutrition is given per serving, calculate per 100g.
3. Round kcal to an integer (558,7 becomes 559).
4. Translate all Italian text to English for the _en fields.
5. Slug must be lowercase with dashes instead of spaces.
6. Category: infer from context (default "main_course"). Allowed: "breakfast", "main_course", "snack".
7. Difficulty: one of "easy", "medium", "hard".
8. Clean ingredient names (no tabs, no "q.b.", no brand names).
9. Output ONLY valid JSON.`

// Generator 呼叫 LLM 取得回應
type Generator interface {
	ProcessRequest(ctx context.Context, systemPrompt, prompt string) (*service.Response, error)
}

// LLMProducer 以 LLM 解析食譜文字
type LLMProducer struct {
	ai Generator
}

// NewLLMProducer 創建 LLM 來源；ai 為 nil 時來源停用
func NewLLMProducer(ai Generator) *LLMProducer {
	return &LLMProducer{ai: ai}
}

func (p *LLMProducer) Name() string { return ProducerLLM }

// Enabled 是否已設定 LLM
func (p *LLMProducer) Enabled() bool {
	return p != nil && p.ai != nil
}

func (p *LLMProducer) Produce(ctx context.Context, input string) (common.ParsedRecipe, error) {
	if !p.Enabled() {
		return common.ParsedRecipe{}, common.ErrLLMDisabled
	}

	resp, err := p.ai.ProcessRequest(ctx, llmSystemPrompt, "Parse this recipe:\n\n"+input)
	if err != nil {
		return common.ParsedRecipe{}, err
	}

	llm, err := DecodeLLMRecipe(resp.Content)
	if err != nil {
		return common.ParsedRecipe{}, err
	}
	return llm.ToParsedRecipe(), nil
}

// Number 寬鬆數值：接受 JSON 數字、數字字串（含逗號小數與分數）或 null
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*n = Number(parser.ParseQuantity(s))
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	*n = Number(v)
	return nil
}

// LLMIngredient LLM 回傳的食材
type LLMIngredient struct {
	NameIT   string `json:"name_it"`
	NameEN   string `json:"name_en"`
	Quantity Number `json:"quantity"`
	Unit     string `json:"unit"`
	NotesIT  string `json:"notes_it"`
	NotesEN  string `json:"notes_en"`
}

// LLMStep LLM 回傳的步驟
type LLMStep struct {
	StepNumber    Number `json:"step_number"`
	InstructionIT string `json:"instruction_it"`
	InstructionEN string `json:"instruction_en"`
}

// LLMRecipe LLM 回傳的食譜結構
type LLMRecipe struct {
	NameIT         string          `json:"name_it"`
	NameEN         string          `json:"name_en"`
	Slug           string          `json:"slug"`
	DescriptionIT  string          `json:"description_it"`
	DescriptionEN  string          `json:"description_en"`
	SourceURL      string          `json:"source_url"`
	Category       string          `json:"category"`
	Servings       Number          `json:"servings"`
	PrepTimeMin    Number          `json:"prep_time_min"`
	CookTimeMin    Number          `json:"cook_time_min"`
	Difficulty     string          `json:"difficulty"`
	KcalPer100g    Number          `json:"kcal_per_100g"`
	ProteinPer100g Number          `json:"protein_per_100g"`
	CarbsPer100g   Number          `json:"carbs_per_100g"`
	FatPer100g     Number          `json:"fat_per_100g"`
	FiberPer100g   *Number         `json:"fiber_per_100g"`
	KcalPerServing Number          `json:"kcal_per_serving"`
	ServingWeightG *Number         `json:"serving_weight_g"`
	Ingredients    []LLMIngredient `json:"ingredients"`
	Steps          []LLMStep       `json:"steps"`
	Tags           []string        `json:"tags"`
}

// DecodeLLMRecipe 從模型回應中取出並解析 JSON
func DecodeLLMRecipe(content string) (*LLMRecipe, error) {
	raw, err := common.ExtractJSONObject(common.StripCodeFences(content))
	if err != nil {
		return nil, common.ErrLLMInvalidOutput.Wrap(err)
	}

	var out LLMRecipe
	if err := common.ParseJSON(raw, &out); err != nil {
		// 部分模型會輸出未加引號的鍵
		if err2 := common.ParseJSON(common.QuoteJSONKeys(raw), &out); err2 != nil {
			return nil, common.ErrLLMInvalidOutput.Wrap(err)
		}
	}
	return &out, nil
}

// ToParsedRecipe 轉換為統一的 ParsedRecipe
func (l *LLMRecipe) ToParsedRecipe() common.ParsedRecipe {
	category := strings.TrimSpace(l.Category)
	if category == "" {
		category = common.DefaultLLMCategory
	}
	r := common.NewParsedRecipe(category)
	r.NameIT = strings.TrimSpace(l.NameIT)
	r.NameEN = common.StringPtr(strings.TrimSpace(l.NameEN))
	r.SourceURL = common.StringPtr(strings.TrimSpace(l.SourceURL))

	if s := nonNegativeInt(l.Servings); s > 0 {
		r.Servings = s
	}
	r.PrepTimeMin = nonNegativeInt(l.PrepTimeMin)
	r.CookTimeMin = nonNegativeInt(l.CookTimeMin)
	if d := common.Difficulty(strings.ToLower(strings.TrimSpace(l.Difficulty))); d.IsValid() {
		r.Difficulty = d
	} else {
		r.Difficulty = parser.ParseDifficulty(l.Difficulty)
	}

	for _, ing := range l.Ingredients {
		name := strings.TrimSpace(ing.NameIT)
		if name == "" {
			continue
		}
		qty := float64(ing.Quantity)
		if qty < 0 {
			qty = 0
		}
		unit := strings.TrimSpace(ing.Unit)
		if unit == "" {
			unit = "g"
		}
		var grams *float64
		if unit == "g" {
			grams = common.Float64Ptr(qty)
		}
		r.Ingredients = append(r.Ingredients, common.ParsedIngredient{
			Name:         name,
			Quantity:     qty,
			Unit:         unit,
			Grams:        grams,
			OriginalText: strings.Trim(name+" - "+strings.TrimSpace(ing.NotesIT), " -"),
		})
	}

	for _, st := range l.Steps {
		if text := strings.TrimSpace(st.InstructionIT); text != "" {
			r.Steps = append(r.Steps, text)
		}
	}

	// 每 100g 數值換算為每份
	weight := 100.0
	if l.ServingWeightG != nil {
		if w := nonNegativeInt(*l.ServingWeightG); w > 0 {
			weight = float64(w)
			r.Nutrition.ServingWeightG = common.IntPtr(w)
		}
	}
	perServing := func(v Number) float64 {
		f := float64(v) * weight / 100
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return 0
		}
		return common.Round2(f)
	}
	r.Nutrition.Kcal = nonNegativeInt(l.KcalPerServing)
	r.Nutrition.Protein = perServing(l.ProteinPer100g)
	r.Nutrition.Carbs = perServing(l.CarbsPer100g)
	r.Nutrition.Fat = perServing(l.FatPer100g)
	if l.FiberPer100g != nil {
		r.Nutrition.Fiber = common.Float64Ptr(perServing(*l.FiberPer100g))
	}

	for _, tag := range l.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			r.Tags = append(r.Tags, tag)
		}
	}
	return r
}

// nonNegativeInt 負數、非有限值或超出 int32 範圍時回傳 0
func nonNegativeInt(n Number) int {
	f := float64(n)
	if math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
