package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Case selects the identifier convention produced by RustIdentifier.
type Case int

const (
	CaseUpperCamel Case = iota
	CaseSnake
)

var titleCaser = cases.Title(language.English)

// Raw identifiers that would collide with language keywords get a
// trailing underscore. Only keywords that can plausibly appear as wire
// field names are listed.
var reservedWords = map[string]struct{}{
	"as": {}, "async": {}, "await": {}, "box": {}, "break": {}, "const": {},
	"continue": {}, "crate": {}, "dyn": {}, "else": {}, "enum": {}, "extern": {},
	"false": {}, "fn": {}, "for": {}, "if": {}, "impl": {}, "in": {}, "let": {},
	"loop": {}, "match": {}, "mod": {}, "move": {}, "mut": {}, "pub": {},
	"ref": {}, "return": {}, "self": {}, "static": {}, "struct": {}, "super": {},
	"trait": {}, "true": {}, "type": {}, "unsafe": {}, "use": {}, "where": {},
	"while": {}, "yield": {},
}

// splitWords breaks a raw string into words. Non-alphanumeric runes act
// as separators; word boundaries also fall on lower→upper transitions
// and between letters and digits, so "v1_float" splits into
// ["v", "1", "float"] and "strEnum" into ["str", "enum"].
func splitWords(raw string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	var prev rune
	for _, r := range raw {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case prev != 0 && unicode.IsLower(prev) && unicode.IsUpper(r),
			prev != 0 && unicode.IsLetter(prev) && unicode.IsDigit(r),
			prev != 0 && unicode.IsDigit(prev) && unicode.IsLetter(r):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
		prev = r
	}
	flush()
	return words
}

// RustIdentifier sanitizes a raw wire name into a valid generated
// identifier: case conversion, keyword escaping and leading-digit
// escaping. The raw value is preserved elsewhere as a wire rename when
// it differs from the result.
func RustIdentifier(raw string, convention Case) string {
	words := splitWords(raw)

	var out string
	switch convention {
	case CaseSnake:
		lowered := make([]string, 0, len(words))
		for _, w := range words {
			lowered = append(lowered, strings.ToLower(w))
		}
		out = strings.Join(lowered, "_")
		if _, reserved := reservedWords[out]; reserved {
			out += "_"
		}
	default:
		var b strings.Builder
		for _, w := range words {
			if unicode.IsDigit(rune(w[0])) {
				b.WriteString(w)
				continue
			}
			b.WriteString(titleCaser.String(strings.ToLower(w)))
		}
		out = b.String()
	}

	if out == "" {
		return "_"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out
}

// childName derives the default definition name for a nested node from
// its parent's name and the wire key, keeping the naming contract in one
// place so it stays deterministic and collision resistant.
func childName(parent, key string) string {
	return parent + RustIdentifier(key, CaseUpperCamel)
}
