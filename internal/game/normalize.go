package game

import (
	"strings"
	"unicode"
)

// NormalizeAnswer lower-cases s and drops everything that is not a letter or
// digit, so "Paris", " paris " and "paris!" compare equal.
func NormalizeAnswer(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AnswersMatch compares a submission with the correct answer. Answers made
// only of punctuation fall back to a trimmed, case-insensitive comparison.
func AnswersMatch(selected, correct string) bool {
	want := NormalizeAnswer(correct)
	if want == "" {
		return strings.EqualFold(strings.TrimSpace(selected), strings.TrimSpace(correct))
	}
	return NormalizeAnswer(selected) == want
}
