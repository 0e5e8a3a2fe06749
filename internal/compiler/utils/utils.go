package utils

import "strings"

// ToPascalCase converts a snake_case or camelCase identifier to PascalCase,
// the form every struct field and enum variant name the transpiler emits
// must take (Go requires an exported identifier to start uppercase). "id"
// is the one recognized initialism and always renders as "ID", whether it
// arrives as its own snake_case segment ("user_id") or as the tail of a
// camelCase word ("userId") — both converge on "UserID".
func ToPascalCase(s string) string {
	if s == "" {
		return s
	}
	if strings.Contains(s, "_") {
		parts := strings.Split(s, "_")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part != "" {
				out = append(out, Capitalize(part))
			}
		}
		return strings.Join(out, "")
	}
	var b strings.Builder
	for _, word := range splitCamelWords(s) {
		b.WriteString(Capitalize(word))
	}
	return b.String()
}

// splitCamelWords breaks a camelCase identifier into its constituent words
// at each lowercase-to-uppercase boundary, leaving runs of consecutive
// uppercase letters (an existing acronym like "ID") together as one word.
func splitCamelWords(s string) []string {
	if s == "" {
		return nil
	}
	runes := []rune(s)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
		curUpper := runes[i] >= 'A' && runes[i] <= 'Z'
		if prevLower && curUpper {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))
	return words
}

// Capitalize uppercases a word's first letter, treating "id" (in any
// casing) as the ID initialism rather than a plain word.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	if strings.ToLower(s) == "id" {
		return "ID"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ReceiverName derives a short method-receiver name from a type name: its
// first letter, lowercased.
func ReceiverName(modelName string) string {
	if modelName == "" {
		return ""
	}
	return strings.ToLower(modelName[:1])
}
