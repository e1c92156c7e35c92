package skills

import (
	"strings"
	"unicode"
)

// NormalizeID converts a display name or directory name into the canonical
// slug used to key skills and agents: lowercase, alphanumeric runs separated
// by single hyphens. It returns "" when the input carries no alphanumeric
// characters, which callers treat as an invalid id.
func NormalizeID(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}
	return b.String()
}

// HumanizeID turns a slug or directory name into a display name:
// separators become spaces and each word is capitalized.
func HumanizeID(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
