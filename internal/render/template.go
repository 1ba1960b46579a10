package render

import "html/template"

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Doc.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; display: flex; color: #1f2328; }
nav.toc { width: 16rem; padding: 1.5rem; border-right: 1px solid #d0d7de; position: sticky; top: 0; height: 100vh; overflow-y: auto; }
nav.toc a { display: block; padding: .25rem 0; color: inherit; text-decoration: none; }
nav.toc a.active { font-weight: 600; color: #0969da; }
main { flex: 1; max-width: 48rem; padding: 1.5rem 2rem; line-height: 1.6; }
section.active h2 { color: #0969da; }
dfn.term { font-style: normal; font-weight: 600; border-bottom: 1px dotted #57606a; cursor: help; }
.glossary dd.missing { color: #57606a; font-style: italic; }
.meta { color: #57606a; font-size: .9rem; }
</style>
</head>
<body>
<nav class="toc">
<strong>Contents</strong>
{{range .Sections}}<a href="#{{.Anchor}}"{{if .Active}} class="active"{{end}}>{{.Heading}}</a>
{{end}}{{if .Glossary}}<a href="#glossary">Glossary</a>
{{end}}</nav>
<main>
<h1>{{.Doc.Title}}</h1>
<p class="summary">{{.Doc.Summary}}</p>
<p class="meta">{{.Doc.ReadingTimeMinutes}} min read{{if .ShareURL}} · <a href="{{.ShareURL}}">Share link</a>{{end}}</p>
{{range .Sections}}<section id="{{.Anchor}}"{{if .Active}} class="active"{{end}}>
<h2>{{.Heading}}</h2>
{{.Body}}
{{with .KeyPoints}}<h3>Key Points</h3>
<ul>
{{range .}}<li>{{.}}</li>
{{end}}</ul>
{{end}}{{with .Citations}}<h3>Sources</h3>
<ol>
{{range .}}<li>{{.}}</li>
{{end}}</ol>
{{end}}</section>
{{end}}{{with .Glossary}}<section id="glossary" class="glossary">
<h2>Glossary</h2>
<dl>
{{range .}}<dt>{{.Term}}</dt>
<dd{{if .Missing}} class="missing"{{end}}>{{.Definition}}</dd>
{{end}}</dl>
</section>
{{end}}{{with .Doc.RelatedTopics}}<section class="related">
<h2>Related Topics</h2>
<ul>
{{range .}}<li>{{.}}</li>
{{end}}</ul>
</section>
{{end}}</main>
</body>
</html>
`))
