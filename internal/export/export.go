// Package export flattens a Document into downloadable files.
package export

import (
	"fmt"
	"strings"

	"github.com/dgallion1/tinywiki/internal/wiki"
)

// Format names an export file type.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatDoc      Format = "doc"
	FormatDOCX     Format = "docx"
)

// Formats lists every supported format.
var Formats = []Format{FormatMarkdown, FormatDoc, FormatDOCX}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatMarkdown, FormatDoc, FormatDOCX:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// File is an exported document ready to be written or downloaded.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render exports doc in the given format.
func Render(doc *wiki.Document, f Format) (File, error) {
	switch f {
	case FormatMarkdown:
		return Markdown(doc), nil
	case FormatDoc:
		return RichDocument(doc)
	case FormatDOCX:
		return DOCX(doc)
	}
	return File{}, fmt.Errorf("unsupported export format %q", f)
}

// FileName returns <slug(title)>.<ext>.
func FileName(doc *wiki.Document, f Format) string {
	return wiki.Slug(doc.Title) + "." + string(f)
}

// Headings shared by every format and recognised on import.
const (
	KeyPointsHeading     = "Key Points"
	SourcesHeading       = "Sources"
	RelatedTopicsHeading = "Related Topics"
	ReadingTimePrefix    = "Reading time:"
)

// ReadingTimeLine formats the reading time for all exports.
func ReadingTimeLine(minutes int) string {
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("%s %d %s", ReadingTimePrefix, minutes, unit)
}

// paragraphs splits content on blank lines, joining wrapped lines.
func paragraphs(content string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
