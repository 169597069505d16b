package common

import (
	"fmt"
	"math"
	"strings"
)

// Round2 四捨五入到小數點後兩位
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TruncateText 截斷過長文字（用於日誌）
func TruncateText(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// FormatIngredients 將食材列表格式化為多行文字
func FormatIngredients(ingredients []ParsedIngredient) string {
	var sb strings.Builder
	for _, ing := range ingredients {
		switch {
		case ing.Grams != nil:
			sb.WriteString(fmt.Sprintf("- %s: %g %s (%gg)\n", ing.Name, ing.Quantity, ing.Unit, *ing.Grams))
		case ing.Unit == UnitToTaste:
			sb.WriteString(fmt.Sprintf("- %s: %s\n", ing.Name, ing.Unit))
		default:
			sb.WriteString(fmt.Sprintf("- %s: %g %s\n", ing.Name, ing.Quantity, ing.Unit))
		}
	}
	return sb.String()
}

// StringSliceToString 將字符串切片轉換為逗號分隔的字符串
func StringSliceToString(slice []string) string {
	if len(slice) == 0 {
		return ""
	}
	return strings.Join(slice, ", ")
}
