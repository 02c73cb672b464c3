package match

import (
	"strings"
	"unicode"
)

// DocTypePrefix normalizes a document type down to its first
// whitespace-delimited token, lowercased. "National ID" and "national id card"
// both retrieve against "national".
func DocTypePrefix(documentType string) string {
	fields := strings.Fields(documentType)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// normalize trims and lowercases a user-typed field for exact comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeIdentifier strips everything but letters and digits so that
// "123-456-789" and "123 456 789" compare equal.
func normalizeIdentifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// nameTokens splits a normalized name into tokens longer than two runes.
// Short tokens (initials, particles) carry no matching signal.
func nameTokens(name string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalize(name)) {
		if len([]rune(tok)) > 2 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// sharedTokenCount counts tokens present in both names.
func sharedTokenCount(a, b string) int {
	ta := nameTokens(a)
	count := 0
	for tok := range nameTokens(b) {
		if _, ok := ta[tok]; ok {
			count++
		}
	}
	return count
}
