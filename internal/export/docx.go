package export

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/tinywiki/internal/markup"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// DOCXContentType is the OOXML word processing MIME type.
const DOCXContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Bullet prefixes list items in DOCX output.
const Bullet = "• "

// DOCX renders doc as an Office Open XML document: heading styles for the
// title and sections, bold runs for emphasized terms.
func DOCX(doc *wiki.Document) (File, error) {
	w := docx.New().WithDefaultTheme()

	w.AddParagraph().Style("Heading1").AddText(oneLine(doc.Title))
	for _, p := range paragraphs(doc.Summary) {
		w.AddParagraph().AddText(p).Italic()
	}
	w.AddParagraph().AddText(ReadingTimeLine(doc.ReadingTimeMinutes)).Size("18")

	for _, sec := range doc.Sections {
		w.AddParagraph().Style("Heading2").AddText(oneLine(sec.Heading))
		for _, p := range paragraphs(sec.Content) {
			writeRuns(w.AddParagraph(), p)
		}
		docxList(w, "Heading3", KeyPointsHeading, sec.KeyPoints, true)
		docxList(w, "Heading3", SourcesHeading, sec.Citations, false)
	}
	docxList(w, "Heading2", RelatedTopicsHeading, doc.RelatedTopics, false)

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return File{}, fmt.Errorf("write docx: %w", err)
	}
	return File{
		Name:        FileName(doc, FormatDOCX),
		ContentType: DOCXContentType,
		Data:        buf.Bytes(),
	}, nil
}

func docxList(w *docx.Docx, style, heading string, items []string, emphasis bool) {
	if len(items) == 0 {
		return
	}
	w.AddParagraph().Style(style).AddText(heading)
	for _, item := range items {
		p := w.AddParagraph()
		if emphasis {
			writeRuns(p, Bullet+oneLine(item))
		} else {
			p.AddText(Bullet + oneLine(item))
		}
	}
}

// writeRuns appends content to p, one bold run per emphasized term.
func writeRuns(p *docx.Paragraph, content string) {
	for f := range markup.Format(content, nil) {
		run := p.AddText(f.Text)
		if f.Kind == markup.KindTerm {
			run.Bold()
		}
	}
}
