package database

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid    = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[\s_-]+`)
)

// Slugify 轉為網址用 slug："Pollo all'Arrabbiata è buono" → "pollo-allarrabbiata-e-buono"
func Slugify(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, text); err == nil {
		text = stripped
	}

	text = strings.ToLower(strings.TrimSpace(text))
	text = slugInvalid.ReplaceAllString(text, "")
	text = slugSeparators.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}
