package export

import (
	"strings"

	"github.com/dgallion1/tinywiki/internal/wiki"
)

// Markdown flattens doc into Markdown. The output depends only on doc.
// Emphasis in section content is kept as written.
func Markdown(doc *wiki.Document) File {
	var sb strings.Builder

	sb.WriteString("# " + oneLine(doc.Title) + "\n\n")
	for _, p := range paragraphs(doc.Summary) {
		sb.WriteString(p + "\n\n")
	}
	sb.WriteString("_" + ReadingTimeLine(doc.ReadingTimeMinutes) + "_\n\n")

	for _, sec := range doc.Sections {
		sb.WriteString("## " + oneLine(sec.Heading) + "\n\n")
		for _, p := range paragraphs(sec.Content) {
			sb.WriteString(p + "\n\n")
		}
		writeList(&sb, "### "+KeyPointsHeading, sec.KeyPoints)
		writeList(&sb, "### "+SourcesHeading, sec.Citations)
	}
	writeList(&sb, "## "+RelatedTopicsHeading, doc.RelatedTopics)

	return File{
		Name:        FileName(doc, FormatMarkdown),
		ContentType: "text/markdown; charset=utf-8",
		Data:        []byte(strings.TrimRight(sb.String(), "\n") + "\n"),
	}
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + "\n\n")
	for _, item := range items {
		sb.WriteString("- " + oneLine(item) + "\n")
	}
	sb.WriteString("\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
