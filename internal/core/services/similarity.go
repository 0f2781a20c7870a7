package services

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// SimilarityRatio scores how close two strings are on a 0-100 scale.
//
// The score is the Levenshtein ratio with substitution cost 2:
// (|a|+|b| - indel(a,b)) / (|a|+|b|), rounded to the nearest integer.
// Both strings are trimmed, lower-cased and whitespace-collapsed first.
func SimilarityRatio(a, b string) int {
	a = normaliseName(a)
	b = normaliseName(b)

	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}

	dist := edlib.LCSEditDistance(a, b)
	return int(math.Round(float64(total-dist) * 100 / float64(total)))
}

func normaliseName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
