// Package sku derives product SKUs from a group base code and a variant
// value, e.g. ("CHR-OSLO", "Rouge") -> "CHR-OSLO-ROUGE".
package sku

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const separator = "-"

// stripMarks decomposes accented characters and removes the combining
// marks, so "Ébène" folds to "Ebene".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Generate builds a SKU from a base code and a variant value. It is pure
// and total: the same inputs always yield the same output, and it never
// fails. The variant value is uppercased, stripped of diacritics, and
// non-alphanumeric runs are collapsed to a single separator.
func Generate(baseSKU, variantValue string) string {
	base := strings.TrimSpace(baseSKU)
	value := normalize(variantValue)
	if value == "" {
		return base
	}
	if base == "" {
		return value
	}
	return base + separator + value
}

func normalize(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToUpper(folded)

	var b strings.Builder
	pendingSep := false
	for _, r := range folded {
		switch {
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteString(separator)
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
