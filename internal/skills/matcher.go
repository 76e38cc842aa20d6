package skills

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Matcher is a case-insensitive alternation of every skill in a set,
// compiled once per scan and shared by all resumes in it.
type Matcher struct {
	set SkillSet
	re  *regexp2.Regexp
}

// Compile normalizes set the way New does, escapes each skill, wraps it in
// word boundaries on the sides that start or end with a word character,
// and joins the result into one pattern. Longer skills come first so a
// shorter skill never shadows a longer one that starts the same way. Word
// characters are Unicode letters, digits, combining marks and connector
// punctuation.
func Compile(set SkillSet) (*Matcher, error) {
	m := &Matcher{set: New(set)}
	if len(m.set) == 0 {
		return m, nil
	}

	ordered := make([]string, len(m.set))
	copy(ordered, m.set)
	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i]) > utf8.RuneCountInString(ordered[j])
	})

	alternatives := make([]string, 0, len(ordered))
	for _, skill := range ordered {
		alternatives = append(alternatives, boundedLiteral(skill))
	}

	re, err := regexp2.Compile(`(?:`+strings.Join(alternatives, "|")+`)`, regexp2.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("failed to compile skill pattern: %w", err)
	}
	m.re = re
	return m, nil
}

// MustCompile is Compile for skill lists known at init time.
func MustCompile(set SkillSet) *Matcher {
	m, err := Compile(set)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Matcher) Skills() SkillSet { return m.set }

// Match returns the title-cased skills found in any of the fragments,
// deduplicated and sorted.
func (m *Matcher) Match(fragments ...string) []string {
	found := make(map[string]struct{})
	if m.re != nil {
		for _, fragment := range fragments {
			// errors only come from match timeouts, which are not set
			hit, err := m.re.FindStringMatch(fragment)
			for err == nil && hit != nil {
				found[TitleCase(hit.String())] = struct{}{}
				hit, err = m.re.FindNextMatch(hit)
			}
		}
	}

	matched := make([]string, 0, len(found))
	for skill := range found {
		matched = append(matched, skill)
	}
	sort.Strings(matched)
	return matched
}

func boundedLiteral(skill string) string {
	pattern := regexp2.Escape(skill)
	if first, _ := utf8.DecodeRuneInString(skill); isWordRune(first) {
		pattern = `\b` + pattern
	}
	if last, _ := utf8.DecodeLastRuneInString(skill); isWordRune(last) {
		pattern += `\b`
	}
	return pattern
}

// isWordRune mirrors the \w class \b is defined against.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) ||
		unicode.IsDigit(r) ||
		unicode.Is(unicode.Mn, r) ||
		unicode.Is(unicode.Pc, r)
}
