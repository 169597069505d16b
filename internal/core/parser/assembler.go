// Package parser 將半結構化的義大利文/英文食譜文字轉換為 ParsedRecipe。
//
// 所有函式皆為純字串處理，無 I/O、無全域可變狀態，可同時被多個 goroutine 使用。
// 無法辨識的欄位一律回退為預設值，不回傳錯誤；名稱或輸入為空時由呼叫端判斷。
package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"recipe-manager/internal/pkg/common"
)

const (
	nameSearchLines = 10
	minNameLen      = 5
)

// 網站品牌標記，出現於名稱候選行時略過
var brandingMarkers = []string{"SOSCuisine"}

var digitsOnly = regexp.MustCompile(`^[\d\s]+$`)

// ParseRecipeText 將整段文字組裝為 ParsedRecipe
func ParseRecipeText(text string) common.ParsedRecipe {
	r := common.NewParsedRecipe(common.DefaultCategory)
	text = normalizeSpaces(text)
	if strings.TrimSpace(text) == "" {
		return r
	}

	r.NameIT = detectName(text)
	r.SourceURL = detectURL(text)
	r.PrepTimeMin, r.CookTimeMin = ParseTimes(text)
	r.Servings = ParseServings(text)
	r.Difficulty = ParseDifficulty(text)
	r.Nutrition = ParseNutrition(text)
	r.Tags = ParseTags(text)
	r.Ingredients, r.Steps = ExtractSections(text)

	return r
}

// RE2 的 \s 不含 NBSP
var nbspReplacer = strings.NewReplacer("\u00a0", " ")

func normalizeSpaces(s string) string {
	return nbspReplacer.Replace(s)
}

// detectName 取前十行中第一個像標題的行
func detectName(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > nameSearchLines {
		lines = lines[:nameSearchLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" ||
			strings.HasPrefix(line, "http") ||
			containsAny(line, brandingMarkers) ||
			utf8.RuneCountInString(line) <= minNameLen ||
			digitsOnly.MatchString(line) {
			continue
		}
		return line
	}
	return ""
}

// detectURL 取第一個含 http 的行
func detectURL(text string) *string {
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "http") {
			return common.StringPtr(strings.TrimSpace(line))
		}
	}
	return nil
}
