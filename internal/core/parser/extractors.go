package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"recipe-manager/internal/pkg/common"
)

// rule 有序規則：第一個成功的 handler 決定結果
type rule struct {
	re     *regexp.Regexp
	handle func(m []string) (float64, bool)
}

// firstMatch 依序套用規則，回傳第一個成功的值
func firstMatch(text string, rules []rule) (float64, bool) {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := r.handle(m); ok {
			return v, true
		}
	}
	return 0, false
}

// decimalValue 取第一個群組的數值（逗號轉小數點）
func decimalValue(m []string) (float64, bool) {
	return parseDecimal(m[1])
}

// durationMinutes 取數值與單位，小時換算成分鐘
func durationMinutes(m []string) (float64, bool) {
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	unit := strings.ToLower(m[2])
	if unit == "h" || strings.HasPrefix(unit, "or") {
		if v > math.MaxInt/60 {
			return 0, false
		}
		v *= 60
	}
	return float64(v), true
}

// positiveInt 取正整數，非正數或溢位視為不符合，繼續下一條規則
func positiveInt(m []string) (float64, bool) {
	v, err := strconv.Atoi(m[1])
	if err != nil || v <= 0 {
		return 0, false
	}
	return float64(v), true
}

var prepTimeRules = []rule{
	{regexp.MustCompile(`(?i)Tempo\s+di\s+preparazione\s*:?\s*(\d+)\s*(min|minut|h|ore?)`), durationMinutes},
	{regexp.MustCompile(`(?i)Preparazione\s*:?\s*(\d+)\s*(min|h|ore?)`), durationMinutes},
	{regexp.MustCompile(`(?i)Prep\s*:?\s*(\d+)\s*(min|h|ore?)`), durationMinutes},
}

var cookTimeRules = []rule{
	{regexp.MustCompile(`(?i)Tempo\s+di\s+cottura\s*:?\s*(\d+)\s*(min|minut|h|ore?)`), durationMinutes},
	{regexp.MustCompile(`(?i)Cottura\s*:?\s*(\d+)\s*(min|h|ore?)`), durationMinutes},
	{regexp.MustCompile(`(?i)Cook\s*:?\s*(\d+)\s*(min|h|ore?)`), durationMinutes},
}

// ParseTimes 回傳準備與烹調時間（分鐘），找不到時為 0
func ParseTimes(text string) (prepMin, cookMin int) {
	if v, ok := firstMatch(text, prepTimeRules); ok {
		prepMin = int(v)
	}
	if v, ok := firstMatch(text, cookTimeRules); ok {
		cookMin = int(v)
	}
	return prepMin, cookMin
}

var servingsRules = []rule{
	{regexp.MustCompile(`(?i)Dosi\s+per\s*:?\s*(\d+)\s*person`), positiveInt},
	{regexp.MustCompile(`(?i)(\d+)\s*(?:porzioni?|servings?|person[ae])`), positiveInt},
	{regexp.MustCompile(`(?i)Quantità\s*:?\s*(\d+)`), positiveInt},
}

// ParseServings 回傳份數，預設 4
func ParseServings(text string) int {
	if v, ok := firstMatch(text, servingsRules); ok {
		return int(v)
	}
	return common.DefaultServings
}

// difficultyRules 依序比對（不分大小寫），"molto facile" 必須先於 "facile"
var difficultyRules = []struct {
	keywords []string
	level    common.Difficulty
}{
	{[]string{"molto facile", "very easy"}, common.DifficultyEasy},
	{[]string{"facile", "easy"}, common.DifficultyEasy},
	{[]string{"medio", "medium"}, common.DifficultyMedium},
	{[]string{"difficile", "hard"}, common.DifficultyHard},
}

// ParseDifficulty 回傳難度，預設 easy
func ParseDifficulty(text string) common.Difficulty {
	lower := strings.ToLower(text)
	for _, r := range difficultyRules {
		if containsAny(lower, r.keywords) {
			return r.level
		}
	}
	return common.DifficultyEasy
}

var (
	kcalRules = []rule{
		{regexp.MustCompile(`(?i)Energia\s*[:,]?\s*(\d+(?:[.,]\d+)?)\s*[Kk]cal`), decimalValue},
		{regexp.MustCompile(`(?i)Calorie\s+(\d+)`), decimalValue},
		{regexp.MustCompile(`(?i)(\d+)\s*calorie[/\s]porzione`), decimalValue},
		{regexp.MustCompile(`(?i)(\d+)\s*(?:kcal|cal)\b`), decimalValue},
	}
	proteinRules = []rule{
		{regexp.MustCompile(`(?i)Proteine?\s+(\d+(?:[.,]\d+)?)\s*g`), decimalValue},
		{regexp.MustCompile(`(?i)protein[ea]?\s*[:,]?\s*(\d+(?:[.,]\d+)?)\s*g`), decimalValue},
	}
	carbsRules = []rule{
		{regexp.MustCompile(`(?i)Carboidrati\s+(\d+(?:[.,]\d+)?)\s*g`), decimalValue},
		{regexp.MustCompile(`(?i)carb[oidrat]*\s*[:,]?\s*(\d+(?:[.,]\d+)?)\s*g`), decimalValue},
	}
	fatRules = []rule{
		{regexp.MustCompile(`(?i)Grassi\s+(\d+(?:[.,]\d+)?)\s*g`), decimalValue},
		{regexp.MustCompile(`(?i)grass[io]?\s*[:,]?\s*(\d+(?:[.,]\d+)?)\s*g`), decimalValue},
	}
	fiberRules = []rule{
		{regexp.MustCompile(`(?i)Fibre?\s*[:,]?\s*(\d+(?:[.,]\d+)?)\s*g`), decimalValue},
		{regexp.MustCompile(`(?i)fiber\s*[:,]?\s*(\d+(?:[.,]\d+)?)\s*g`), decimalValue},
	}
	servingWeightRules = []rule{
		{regexp.MustCompile(`(?i)per\s+porzione\s*\((\d+)\s*g\)`), positiveInt},
		{regexp.MustCompile(`(?i)porzione\s*\((\d+)\s*g\)`), positiveInt},
		{regexp.MustCompile(`(?i)\((\d+)\s*g\)\s*$`), positiveInt},
	}
)

// ParseNutrition 擷取每份營養值；找不到的欄位保持零值或 nil
func ParseNutrition(text string) common.ParsedNutrition {
	var n common.ParsedNutrition

	if v, ok := firstMatch(text, kcalRules); ok && v <= math.MaxInt32 {
		n.Kcal = int(v)
	}
	if v, ok := firstMatch(text, proteinRules); ok {
		n.Protein = v
	}
	if v, ok := firstMatch(text, carbsRules); ok {
		n.Carbs = v
	}
	if v, ok := firstMatch(text, fatRules); ok {
		n.Fat = v
	}
	if v, ok := firstMatch(text, fiberRules); ok {
		n.Fiber = common.Float64Ptr(v)
	}
	if v, ok := firstMatch(strings.TrimRight(text, " \t\r\n"), servingWeightRules); ok {
		n.ServingWeightG = common.IntPtr(int(v))
	}
	return n
}

// tagRules 關鍵字到標籤（大小寫敏感）
var tagRules = []struct {
	keyword string
	tag     string
}{
	{"Vegane", "vegan"},
	{"Vegetariane", "vegetarian"},
	{"Glutine", "gluten-free"},
	{"Lattosio", "lactose-free"},
	{"Halal", "halal"},
	{"Kosher", "kosher"},
	{"Diabetiche", "diabetic-friendly"},
}

// ParseTags 依表格順序回傳符合的飲食標籤
func ParseTags(text string) []string {
	tags := []string{}
	for _, r := range tagRules {
		if strings.Contains(text, r.keyword) {
			tags = append(tags, r.tag)
		}
	}
	return tags
}
