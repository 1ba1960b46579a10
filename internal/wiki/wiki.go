// Package wiki defines the generated Document and how it is loaded.
package wiki

import (
	"fmt"
	"regexp"
	"strings"
)

// Document is a generated wiki page. The viewer treats it as immutable.
type Document struct {
	Title              string    `json:"title" yaml:"title"`
	Summary            string    `json:"summary" yaml:"summary"`
	ReadingTimeMinutes int       `json:"readingTimeMinutes" yaml:"readingTimeMinutes"`
	Sections           []Section `json:"sections" yaml:"sections"`
	RelatedTopics      []string  `json:"relatedTopics" yaml:"relatedTopics"`
}

// Section is one narrative unit of a Document. Its index in Document.Sections
// is its identity for navigation, deep links and speech.
type Section struct {
	Heading   string   `json:"heading" yaml:"heading"`
	Content   string   `json:"content" yaml:"content"` // Prose with **term** emphasis
	KeyPoints []string `json:"keyPoints" yaml:"keyPoints"`
	Citations []string `json:"citations" yaml:"citations"`
}

// SectionCount returns the number of sections, tolerating a nil document.
func (d *Document) SectionCount() int {
	if d == nil {
		return 0
	}
	return len(d.Sections)
}

// Section returns the section at index i.
func (d *Document) Section(i int) (Section, bool) {
	if d == nil || i < 0 || i >= len(d.Sections) {
		return Section{}, false
	}
	return d.Sections[i], true
}

// Validate checks the structural requirements a document must meet before
// the viewer accepts it.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if d.ReadingTimeMinutes < 0 {
		return fmt.Errorf("readingTimeMinutes must be non-negative")
	}
	return nil
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// Slug converts a title to a file-name-safe slug. Empty results fall back to "wiki".
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	if s == "" {
		return "wiki"
	}
	return s
}
