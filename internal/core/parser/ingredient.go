package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"recipe-manager/internal/pkg/common"
)

var (
	// "2 uova medie 100 g"：數量、單字單位、名稱、結尾公克數
	ingredientWithWeight = regexp.MustCompile(`(?i)^([\d.,/]+)\s*([a-zA-Z]+)?\s+(.+?)\s+(\d+)\s*(g|gr|ml|kg)$`)

	// "250 mL latte"：數量、可選單位、名稱
	ingredientWithUnit = regexp.MustCompile(`(?i)^([\d.,/]+)\s*(g|gr|ml|mL|l|L|kg|cucchiai?o?|cucchiaini?|tazz[ae]|pz|pezz[oi])?\s+(.+)$`)
)

const minIngredientLineLen = 3

// ParseIngredientLine 將一行食材文字拆解為數量、單位、名稱與公克數。
// 過短的行回傳 nil；其餘輸入至少會以「適量」形式回傳名稱。
func ParseIngredientLine(line string) *common.ParsedIngredient {
	line = strings.TrimSpace(normalizeSpaces(line))
	if utf8.RuneCountInString(line) < minIngredientLineLen {
		return nil
	}

	if ing := parseWithWeight(line); ing != nil {
		return ing
	}
	if ing := parseWithUnit(line); ing != nil {
		return ing
	}

	return &common.ParsedIngredient{
		Name:         line,
		Quantity:     0,
		Unit:         common.UnitToTaste,
		OriginalText: line,
	}
}

// parseWithWeight 處理結尾帶有重量的行。
// 單位欄位會吃掉名稱的第一個字："2 uova medie 100 g" 的單位為 "uova"。
func parseWithWeight(line string) *common.ParsedIngredient {
	m := ingredientWithWeight.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	unit := m[2]
	if unit == "" {
		unit = common.UnitPieces
	}

	weight, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return nil
	}
	if strings.EqualFold(m[5], "kg") {
		weight *= 1000
	}

	return &common.ParsedIngredient{
		Name:         strings.TrimSpace(m[3]),
		Quantity:     ParseQuantity(m[1]),
		Unit:         unit,
		Grams:        common.Float64Ptr(weight),
		OriginalText: line,
	}
}

// parseWithUnit 處理「數量 [單位] 名稱」的行
func parseWithUnit(line string) *common.ParsedIngredient {
	m := ingredientWithUnit.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	unit := m[2]
	if unit == "" {
		unit = common.UnitPieces
	}
	qty := ParseQuantity(m[1])

	ing := &common.ParsedIngredient{
		Name:         strings.TrimSpace(m[3]),
		Quantity:     qty,
		Unit:         unit,
		OriginalText: line,
	}
	if factor, ok := GramsPerUnit(unit); ok {
		ing.Grams = common.Float64Ptr(qty * factor)
	}
	return ing
}
