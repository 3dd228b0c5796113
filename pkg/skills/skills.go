// Package skills converts free-text skill input into ordered skill lists and
// answers containment queries over them.
package skills

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const separator = ", "

var folder = cases.Lower(language.Und)

// Normalize splits raw on commas, trims each piece and drops empty ones.
// Order and case are preserved. The result is never nil.
func Normalize(raw string) []string {
	return Clean(strings.Split(raw, ","))
}

// Clean trims every entry of an already split list and drops the empty ones.
func Clean(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Denormalize joins skills for redisplay in an editable text field.
func Denormalize(list []string) string {
	return strings.Join(list, separator)
}

// Fold lowercases a skill for comparison.
func Fold(s string) string {
	return folder.String(s)
}

// ParseRequired turns a comma separated filter value into lowercase tokens.
// Input made only of commas and whitespace yields an empty slice.
func ParseRequired(raw string) []string {
	tokens := Normalize(raw)
	for i, t := range tokens {
		tokens[i] = Fold(t)
	}
	return tokens
}

// ContainsAll reports whether every token in want appears in have, ignoring case.
// want is expected to be folded already (see ParseRequired).
func ContainsAll(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	if len(have) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[Fold(s)] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
