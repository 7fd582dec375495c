package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FormatKey turns "software_engineer" into "Software Engineer".
// Only the first letter of each underscore-separated word is changed.
func FormatKey(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// FormatCategory turns a score key into a label: underscores become spaces and
// every letter that starts a word is upper-cased, "ats_score-v2" becomes "Ats Score-V2".
func FormatCategory(key string) string {
	var b strings.Builder
	b.Grow(len(key))

	prevWord := false
	for _, r := range strings.ReplaceAll(key, "_", " ") {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r)
		if isWord && !prevWord {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevWord = isWord
	}

	return b.String()
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}
