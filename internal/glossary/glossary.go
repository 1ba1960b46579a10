// Package glossary derives term definitions from the prose that immediately
// follows each emphasized term. The heuristic trades precision for not needing
// a separate structured glossary from the generator.
package glossary

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/tinywiki/internal/markup"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// MaxDefinitionRunes caps the length of a derived definition. Longer
// definitions are cut and end in an ellipsis.
const MaxDefinitionRunes = 200

// MinTermRunes is the shortest term kept.
const MinTermRunes = 2

// Entry is a single glossary term.
type Entry struct {
	Term       string `json:"term"`       // First-seen casing
	Definition string `json:"definition"` // Empty when no definition could be derived
}

// Map holds glossary entries keyed by lowercased term.
type Map struct {
	entries map[string]Entry
}

// Len returns the number of terms.
func (m Map) Len() int { return len(m.entries) }

// Lookup resolves term ignoring case.
func (m Map) Lookup(term string) (string, bool) {
	e, ok := m.entries[key(term)]
	return e.Definition, ok
}

// Entry returns the full entry for term ignoring case.
func (m Map) Entry(term string) (Entry, bool) {
	e, ok := m.entries[key(term)]
	return e, ok
}

// Entries returns all entries ordered alphabetically, ignoring case.
func (m Map) Entries() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := key(out[i].Term), key(out[j].Term)
		if ki != kj {
			return ki < kj
		}
		return out[i].Term < out[j].Term
	})
	return out
}

var (
	// Optional lead-in, then everything up to the first period or newline.
	definitionPattern = regexp.MustCompile(`^[ \t]*(?:[:,\-–—]|is\b|are\b|refers to\b|means\b|represents\b)?[ \t]*([^.\n]+)`)
	numericTerm       = regexp.MustCompile(`^[+-]?(?:\d[\d,]*(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?%?$`)
)

// Extract scans sections in order and returns the glossary. The first
// occurrence of a term wins; later mentions never overwrite it.
func Extract(sections []wiki.Section) Map {
	m := Map{entries: make(map[string]Entry)}
	for _, sec := range sections {
		content := sec.Content
		for _, sp := range markup.Spans(content) {
			term := sp.Term()
			if !IsTerm(term) {
				continue
			}
			k := key(term)
			if _, seen := m.entries[k]; seen {
				continue
			}
			m.entries[k] = Entry{
				Term:       term,
				Definition: Define(content[sp.End:]),
			}
		}
	}
	return m
}

// IsTerm reports whether an emphasized run qualifies as a glossary term.
func IsTerm(term string) bool {
	if utf8.RuneCountInString(term) < MinTermRunes {
		return false
	}
	return !numericTerm.MatchString(term)
}

// Define derives a definition from the text that follows a term's closing
// delimiter. It returns "" when nothing usable follows.
func Define(following string) string {
	m := definitionPattern.FindStringSubmatch(following)
	if m == nil {
		return ""
	}
	def := strings.TrimSpace(markup.Strip(m[1]))
	if def == "" {
		return ""
	}
	return truncate(capitalize(def), MaxDefinitionRunes)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace) + "..."
}

func key(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
