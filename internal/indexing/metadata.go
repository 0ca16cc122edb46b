package indexing

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it into maximal runs of letters and digits.
// Example: "Hello, wörld-42!" -> ["hello", "wörld", "42"]
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TermFrequencies counts token occurrences and returns the distinct terms in
// first-appearance order, so callers can iterate deterministically.
func TermFrequencies(tokens []string) (map[string]int, []string) {
	tf := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tf[tok] == 0 {
			order = append(order, tok)
		}
		tf[tok]++
	}
	return tf, order
}

// Preview flattens newlines to spaces and truncates to PreviewChars runes.
func Preview(content string) string {
	flat := strings.ReplaceAll(content, "\r\n", " ")
	flat = strings.ReplaceAll(flat, "\n", " ")
	runes := []rune(flat)
	if len(runes) > PreviewChars {
		return string(runes[:PreviewChars])
	}
	return flat
}

// HasDocumentExtension reports whether name ends in one of DocumentExtensions,
// ignoring case.
func HasDocumentExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range DocumentExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
