package schema

import (
	"strconv"
	"strings"
	"unicode"
)

// ToSnakeCase turns a label into a lower_snake_case identifier. Word
// boundaries are runs of non-alphanumerics and camelCase humps; letters from
// any script are kept. ToSnakeCase is idempotent.
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			// "firstName" -> first_name, "HTTPServer" -> http_server
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, unicode.ToLower(r))
	}
	flush()
	return strings.Join(words, "_")
}

// uniqueID returns base, or base_N for the smallest N not already taken.
func uniqueID(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 1; ; n++ {
		id := base + "_" + strconv.Itoa(n)
		if !taken(id) {
			return id
		}
	}
}
