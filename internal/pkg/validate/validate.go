package validate

import (
	"strings"
	"unicode/utf8"
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Length reports whether the trimmed value has between lo and hi runes.
func Length(value string, lo, hi int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	return n >= lo && n <= hi
}

// Between reports lo <= v <= hi.
func Between(v, lo, hi int) bool {
	return v >= lo && v <= hi
}

// Tags trims, lowercases and dedupes tags, dropping empty ones.
func Tags(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
