package parser

import (
	"strings"
	"unicode/utf8"

	"recipe-manager/internal/pkg/common"
)

// Section 文字區段
type Section int

const (
	SectionPreamble Section = iota
	SectionIngredients
	SectionMethod
	SectionNutrition
)

func (s Section) String() string {
	switch s {
	case SectionIngredients:
		return "ingredients"
	case SectionMethod:
		return "method"
	case SectionNutrition:
		return "nutrition"
	default:
		return "preamble"
	}
}

// 區段標題（大小寫敏感的子字串比對）
var (
	ingredientsHeaders = []string{"Ingredienti", "Ingredients"}
	ingredientsEnders  = []string{"Metodo", "Method", "Prima di"}
	methodHeaders      = []string{"Metodo", "Method"}
	methodEnders       = []string{"Tabella nutrizionale", "Osservazioni"}
)

const minStepLen = 20

// LineClass 單行的分類結果
type LineClass struct {
	Section    Section
	Header     bool // 任一區段的標題或結束標記
	Ingredient bool // 應交給食材解析
	Step       bool // 應作為步驟
}

// SectionClassifier 逐行追蹤食材區與步驟區。
// 兩個區段獨立判斷：步驟區開始後若再出現食材標題，後續行可能同時屬於兩者。
type SectionClassifier struct {
	inIngredients bool
	inMethod      bool
	methodClosed  bool
}

// NewSectionClassifier 建立新的分類器
func NewSectionClassifier() *SectionClassifier {
	return &SectionClassifier{}
}

// Next 分類一行（呼叫前不需 trim）
func (c *SectionClassifier) Next(line string) LineClass {
	line = strings.TrimSpace(line)
	var out LineClass

	// 標題只取消所屬區段的路由；步驟中提到 "Ingredients" 仍是步驟
	switch {
	case containsAny(line, ingredientsHeaders):
		c.inIngredients = true
		out.Header = true
	case c.inIngredients && containsAny(line, ingredientsEnders):
		c.inIngredients = false
		out.Header = true
	case c.inIngredients && line != "":
		out.Ingredient = true
	}

	switch {
	case containsAny(line, methodHeaders):
		c.inMethod = true
		c.methodClosed = false
		out.Header = true
	case c.inMethod && containsAny(line, methodEnders):
		c.inMethod = false
		c.methodClosed = true
		out.Header = true
	case c.inMethod && utf8.RuneCountInString(line) > minStepLen:
		out.Step = true
	}

	out.Section = c.Section()
	return out
}

// Section 目前所在區段
func (c *SectionClassifier) Section() Section {
	switch {
	case c.inMethod:
		return SectionMethod
	case c.inIngredients:
		return SectionIngredients
	case c.methodClosed:
		return SectionNutrition
	default:
		return SectionPreamble
	}
}

// ExtractSections 從全文取出食材與步驟
func ExtractSections(text string) ([]common.ParsedIngredient, []string) {
	ingredients := []common.ParsedIngredient{}
	steps := []string{}

	c := NewSectionClassifier()
	for _, raw := range strings.Split(text, "\n") {
		class := c.Next(raw)
		line := strings.TrimSpace(raw)
		if class.Ingredient {
			if ing := ParseIngredientLine(line); ing != nil && ing.Name != "" {
				ingredients = append(ingredients, *ing)
			}
		}
		if class.Step {
			steps = append(steps, line)
		}
	}
	return ingredients, steps
}

// ParseIngredientLines 解析已切好的食材行，略過無法辨識的行
func ParseIngredientLines(lines []string) []common.ParsedIngredient {
	out := []common.ParsedIngredient{}
	for _, line := range lines {
		if ing := ParseIngredientLine(line); ing != nil && ing.Name != "" {
			out = append(out, *ing)
		}
	}
	return out
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
