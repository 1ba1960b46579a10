package export

import (
	"bytes"
	"fmt"
	"html"
	"html/template"

	"github.com/dgallion1/tinywiki/internal/markup"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// RichDocumentContentType makes word processors open the HTML body as a document.
const RichDocumentContentType = "application/msword"

var richTmpl = template.Must(template.New("doc").Funcs(template.FuncMap{
	"paragraphs": paragraphs,
	"prose":      prose,
	"readtime":   ReadingTimeLine,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; font-size: 12pt; line-height: 1.5; margin: 1in; }
h1 { font-size: 24pt; color: #1a1a2e; }
h2 { font-size: 16pt; color: #16213e; border-bottom: 1px solid #ccc; }
h3 { font-size: 13pt; color: #0f3460; }
.summary { font-style: italic; }
.reading-time { color: #666; font-size: 10pt; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range paragraphs .Summary}}<p class="summary">{{.}}</p>
{{end}}<p class="reading-time">{{readtime .ReadingTimeMinutes}}</p>
{{range .Sections}}<h2>{{.Heading}}</h2>
{{range paragraphs .Content}}<p>{{prose .}}</p>
{{end}}{{with .KeyPoints}}<h3>Key Points</h3>
<ul>
{{range .}}<li>{{prose .}}</li>
{{end}}</ul>
{{end}}{{with .Citations}}<h3>Sources</h3>
<ul>
{{range .}}<li>{{.}}</li>
{{end}}</ul>
{{end}}{{end}}{{with .RelatedTopics}}<h2>Related Topics</h2>
<ul>
{{range .}}<li>{{.}}</li>
{{end}}</ul>
{{end}}</body>
</html>
`))

// RichDocument renders doc as a minimal styled HTML page saved with a word
// processor extension. Emphasis becomes <b> directly; glossary lookups are
// not involved.
func RichDocument(doc *wiki.Document) (File, error) {
	var buf bytes.Buffer
	if err := richTmpl.Execute(&buf, doc); err != nil {
		return File{}, fmt.Errorf("render rich document: %w", err)
	}
	return File{
		Name:        FileName(doc, FormatDoc),
		ContentType: RichDocumentContentType,
		Data:        buf.Bytes(),
	}, nil
}

// prose escapes s and turns **x** runs into bold.
func prose(s string) template.HTML {
	return template.HTML(markup.Rewrite(s, html.EscapeString, func(term string) string {
		return "<b>" + html.EscapeString(term) + "</b>"
	}))
}
