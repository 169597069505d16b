package parser

import (
	"math"
	"strconv"
	"strings"
)

// ParseQuantity 將數量字串正規化為數值。
// 支援小數逗號 ("1,5")、分數 ("1/2") 與帶分數 ("1 1/2")；無法解析時回傳 0。
func ParseQuantity(token string) float64 {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0
	}

	var v float64
	switch {
	case strings.ContainsAny(token, " \t"):
		for _, part := range strings.Fields(token) {
			v += ParseQuantity(part)
		}
	case strings.Contains(token, "/"):
		parts := strings.Split(token, "/")
		if len(parts) != 2 {
			return 0
		}
		num, ok1 := parseDecimal(parts[0])
		den, ok2 := parseDecimal(parts[1])
		if !ok1 || !ok2 || den == 0 {
			return 0
		}
		v = num / den
	default:
		d, ok := parseDecimal(token)
		if !ok {
			return 0
		}
		v = d
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// parseDecimal 解析十進位數字，逗號視為小數點
func parseDecimal(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
