package casing

import (
	"strings"
	"unicode"
)

// ToCamel converts a Go identifier to camelCase, e.g. "OldName" -> "oldName".
// Initialism runs are treated as single words, so "HTTPServer" becomes "httpServer".
func ToCamel(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, word := range words[1:] {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// ToKebab converts a Go identifier to kebab-case, e.g. "FaceCard" -> "face-card".
func ToKebab(s string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, "-")
}

// splitWords splits an identifier on case boundaries and separators.
// A run of uppercase letters is kept as one word unless followed by
// a lowercase letter, in which case the last letter starts the next word.
func splitWords(s string) []string {
	var words []string
	var current []rune
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			if len(current) > 0 {
				words = append(words, string(current))
				current = nil
			}
		case unicode.IsUpper(r):
			if len(current) > 0 {
				startsNewWord := !unicode.IsUpper(runes[i-1]) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1]))
				if startsNewWord {
					words = append(words, string(current))
					current = nil
				}
			}
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	return words
}
