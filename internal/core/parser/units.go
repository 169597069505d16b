package parser

import "strings"

// unitGrams 單位換算成公克的係數；值為 0 表示計數單位，無法換算
var unitGrams = map[string]float64{
	// 體積
	"cucchiaio":  15,
	"cucchiai":   15,
	"tbsp":       15,
	"cucchiaino": 5,
	"cucchiaini": 5,
	"tsp":        5,
	"tazza":      240,
	"tazze":      240,
	"cup":        240,
	"cups":       240,
	"ml":         1,
	"l":          1000,
	"litro":      1000,
	"litri":      1000,

	// 計數
	"pz":       0,
	"pezzo":    0,
	"pezzi":    0,
	"fetta":    30,
	"fette":    30,
	"spicchio": 5,
	"spicchi":  5,
	"pizzico":  0.5,

	// 重量
	"g":      1,
	"gr":     1,
	"grammi": 1,
	"kg":     1000,
	"mg":     0.001,
}

// GramsPerUnit 回傳單位的公克係數；未知或無法換算的單位回傳 false
func GramsPerUnit(unit string) (float64, bool) {
	factor, ok := unitGrams[strings.ToLower(strings.TrimSpace(unit))]
	if !ok || factor == 0 {
		return 0, false
	}
	return factor, true
}
