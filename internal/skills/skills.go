// Package skills holds the predefined skill list and the keyword matcher
// that finds those skills in extracted resume text.
package skills

import (
	"strings"
	"unicode"
)

// SkillSet is an ordered list of canonical skill names. It is built once
// per scan and never mutated afterwards.
type SkillSet []string

// Parse builds a SkillSet from comma-separated user input.
func Parse(input string) SkillSet {
	return New(strings.Split(input, ","))
}

// New trims every entry, drops blanks and removes case-insensitive
// duplicates. The first spelling seen wins.
func New(list []string) SkillSet {
	seen := make(map[string]struct{}, len(list))
	set := make(SkillSet, 0, len(list))
	for _, raw := range list {
		skill := strings.TrimSpace(raw)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		set = append(set, skill)
	}
	return set
}

func (s SkillSet) Len() int { return len(s) }

func (s SkillSet) String() string { return strings.Join(s, ", ") }

// TitleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "power bi" and "POWER BI" both become "Power Bi".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}
