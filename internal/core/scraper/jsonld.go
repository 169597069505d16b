package scraper

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"recipe-manager/internal/core/parser"
	"recipe-manager/internal/pkg/common"

	"golang.org/x/net/html"
)

var (
	isoDuration = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?`)
	firstInt    = regexp.MustCompile(`\d+`)
	firstNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// findJSONLDRecipe 在 ld+json 區塊中尋找 schema.org Recipe
func findJSONLDRecipe(doc *html.Node) map[string]interface{} {
	scripts := findAll(doc, allOf(tag("script"), func(n *html.Node) bool {
		return strings.EqualFold(strings.TrimSpace(attr(n, "type")), "application/ld+json")
	}))

	for _, script := range scripts {
		if script.FirstChild == nil || script.FirstChild.Type != html.TextNode {
			continue
		}
		var data interface{}
		if err := json.Unmarshal([]byte(script.FirstChild.Data), &data); err != nil {
			continue
		}
		if recipe := findRecipeNode(data); recipe != nil {
			return recipe
		}
	}
	return nil
}

func findRecipeNode(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if r := findRecipeNode(item); r != nil {
				return r
			}
		}
	case map[string]interface{}:
		if isRecipeType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

// @type 可為字串或陣列
func isRecipeType(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return t == "Recipe"
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// recipeFromJSONLD 轉換 schema.org Recipe
func recipeFromJSONLD(data map[string]interface{}, pageURL string) common.ParsedRecipe {
	r := common.NewParsedRecipe(common.DefaultCategory)
	r.NameIT = strings.TrimSpace(stringValue(data["name"]))
	r.SourceURL = common.StringPtr(pageURL)
	r.PrepTimeMin = parseISODuration(stringValue(data["prepTime"]))
	r.CookTimeMin = parseISODuration(stringValue(data["cookTime"]))
	if s := parseYield(data["recipeYield"]); s > 0 {
		r.Servings = s
	}

	if lines, ok := data["recipeIngredient"].([]interface{}); ok {
		for _, l := range lines {
			if ing := parser.ParseIngredientLine(stringValue(l)); ing != nil && ing.Name != "" {
				r.Ingredients = append(r.Ingredients, *ing)
			}
		}
	}
	r.Steps = append(r.Steps, instructionSteps(data["recipeInstructions"])...)

	if nut, ok := data["nutrition"].(map[string]interface{}); ok {
		r.Nutrition.Kcal = int(numberValue(nut["calories"]))
		r.Nutrition.Protein = numberValue(nut["proteinContent"])
		r.Nutrition.Carbs = numberValue(nut["carbohydrateContent"])
		r.Nutrition.Fat = numberValue(nut["fatContent"])
		if fiber := numberValue(nut["fiberContent"]); fiber > 0 {
			r.Nutrition.Fiber = common.Float64Ptr(fiber)
		}
		if w := numberValue(nut["servingSize"]); w > 0 && strings.Contains(stringValue(nut["servingSize"]), "g") {
			r.Nutrition.ServingWeightG = common.IntPtr(int(w))
		}
	}

	if kw := stringValue(data["keywords"]); kw != "" {
		r.Tags = parser.ParseTags(kw)
	}
	return r
}

// parseISODuration PT1H30M → 90
func parseISODuration(s string) int {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return hours*60 + minutes
}

// parseYield 取第一個整數；可為數字、字串或陣列
func parseYield(v interface{}) int {
	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return 0
		}
		v = list[0]
	}
	m := firstInt.FindString(stringValue(v))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// instructionSteps 支援字串、字串陣列、HowToStep 與 HowToSection
func instructionSteps(v interface{}) []string {
	var steps []string
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			steps = append(steps, s)
		}
	case []interface{}:
		for _, item := range t {
			steps = append(steps, instructionSteps(item)...)
		}
	case map[string]interface{}:
		if items, ok := t["itemListElement"]; ok {
			return instructionSteps(items)
		}
		if s := strings.TrimSpace(stringValue(t["text"])); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// numberValue 取出 "450 kcal"、"12,5 g" 之類的數值
func numberValue(v interface{}) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return parser.ParseQuantity(firstNumber.FindString(stringValue(v)))
}
