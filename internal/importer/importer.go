// Package importer reopens exported wiki files as Documents.
package importer

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/tinywiki/internal/export"
	"github.com/dgallion1/tinywiki/internal/narration"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// WordsPerMinute estimates reading time when a file does not state it.
const WordsPerMinute = 200

// Importer converts raw file bytes into a Document.
type Importer interface {
	Import(r io.Reader, filename string) (*wiki.Document, error)
}

// SupportedExtensions lists file extensions that can be imported.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".doc":      true,
	".docx":     true,
	".json":     true,
	".yaml":     true,
	".yml":      true,
}

// ForFile returns the importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".html", ".htm", ".doc":
		return &HTMLImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	case ".json", ".yaml", ".yml":
		return documentImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension can be imported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// documentImporter reads serialized Documents directly.
type documentImporter struct{}

func (documentImporter) Import(r io.Reader, filename string) (*wiki.Document, error) {
	return wiki.Read(r, filepath.Ext(filename))
}

type blockKind int

const (
	blockHeading blockKind = iota
	blockParagraph
	blockItem
)

// block is one structural element recovered from an exported file. Text
// keeps emphasized runs as **term**.
type block struct {
	kind  blockKind
	level int
	text  string
}

var readingTimeLine = regexp.MustCompile(`(?i)^[_*\s]*` + regexp.QuoteMeta(export.ReadingTimePrefix) + `\s*(\d+)`)

// assemble maps the export layout back onto a Document: H1 title, leading
// paragraphs as summary, the reading time line, H2 sections with H3 key point
// and source lists, and a closing related topics list.
func assemble(blocks []block, filename string) (*wiki.Document, error) {
	doc := &wiki.Document{ReadingTimeMinutes: -1}
	var summary []string
	var sec *wiki.Section
	var content []string
	list := ""

	closeSection := func() {
		if sec != nil {
			sec.Content = strings.Join(content, "\n\n")
			doc.Sections = append(doc.Sections, *sec)
		}
		sec, content = nil, nil
	}

	for _, b := range blocks {
		text := strings.TrimSpace(b.text)
		if text == "" {
			continue
		}
		switch b.kind {
		case blockHeading:
			switch {
			case b.level == 1 && doc.Title == "":
				doc.Title = text
				list = ""
			case b.level <= 2 && strings.EqualFold(text, export.RelatedTopicsHeading):
				closeSection()
				list = "related"
			case b.level <= 2:
				closeSection()
				sec = &wiki.Section{Heading: text}
				list = ""
			case sec != nil && strings.EqualFold(text, export.KeyPointsHeading):
				list = "keyPoints"
			case sec != nil && strings.EqualFold(text, export.SourcesHeading):
				list = "citations"
			default:
				list = ""
				if sec != nil {
					content = append(content, text)
				} else {
					summary = append(summary, text)
				}
			}

		case blockParagraph, blockItem:
			if m := readingTimeLine.FindStringSubmatch(text); m != nil && sec == nil && doc.ReadingTimeMinutes < 0 {
				doc.ReadingTimeMinutes, _ = strconv.Atoi(m[1])
				continue
			}
			if b.kind == blockItem {
				text = strings.TrimSpace(strings.TrimPrefix(text, strings.TrimSpace(export.Bullet)))
			}
			switch {
			case list == "related":
				doc.RelatedTopics = append(doc.RelatedTopics, text)
			case list == "keyPoints" && sec != nil:
				sec.KeyPoints = append(sec.KeyPoints, text)
			case list == "citations" && sec != nil:
				sec.Citations = append(sec.Citations, text)
			case sec != nil:
				content = append(content, text)
			default:
				summary = append(summary, text)
			}
		}
	}
	closeSection()

	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	doc.Summary = strings.Join(summary, "\n\n")
	if doc.ReadingTimeMinutes < 0 {
		doc.ReadingTimeMinutes = estimateMinutes(doc)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("import %s: %w", filename, err)
	}
	return doc, nil
}

// estimateMinutes rounds the word count up to whole minutes, at least one.
func estimateMinutes(doc *wiki.Document) int {
	words := narration.CountWords(doc.Summary)
	for _, s := range doc.Sections {
		words += narration.CountWords(s.Heading) + narration.CountWords(s.Content)
		for _, kp := range s.KeyPoints {
			words += narration.CountWords(kp)
		}
	}
	return max(1, int(math.Ceil(float64(words)/WordsPerMinute)))
}
