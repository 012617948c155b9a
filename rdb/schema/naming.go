package schema

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics 去除变音符号，"crèmeBrûlée" -> "cremeBrulee"
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

func (m *Mapper) normalizeName(s string) string {
	if m.options.RemoveDiacritics {
		return RemoveDiacritics(s)
	}
	return s
}
