// Package render produces the server-side HTML view of a Document.
package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/tinywiki/internal/glossary"
	"github.com/dgallion1/tinywiki/internal/markup"
	"github.com/dgallion1/tinywiki/internal/navigator"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// Placeholder is shown for glossary terms without a derived definition.
const Placeholder = "Definition not available"

// PageOptions controls per-request parts of a page.
type PageOptions struct {
	Active   int    // Highlighted section, -1 for none
	ShareURL string // Optional link offered on the page
}

// markdown is shared by every render. It carries no glossary state: terms are
// swapped for tokens before conversion and for their HTML afterwards.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

// termToken marks a term's position while goldmark runs. It is a single
// identifier so neither the Markdown parser nor the highlighter splits it.
// Content that already contains it gets a longer prefix.
const termToken = "tinywikiterm"

// Content renders section content as HTML. Terms are located with the markup
// scanner, so the page marks exactly the runs the glossary was built from;
// the prose around them is interpreted with GFM and code highlighting. Raw
// HTML in content is never passed through.
func Content(content string, g markup.Glossary) (template.HTML, error) {
	prefix := termToken
	for strings.Contains(content, prefix) {
		prefix += "x"
	}

	var src strings.Builder
	var pairs []string
	for f := range markup.Format(content, g) {
		if f.Kind != markup.KindTerm {
			src.WriteString(f.Text)
			continue
		}
		tok := prefix + strconv.Itoa(len(pairs)/2) + "z"
		src.WriteString(tok)
		pairs = append(pairs, tok, dfn(f.Text, f.Definition, f.Defined))
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src.String()), &buf); err != nil {
		return "", fmt.Errorf("render content: %w", err)
	}
	out := buf.String()
	if len(pairs) > 0 {
		out = strings.NewReplacer(pairs...).Replace(out)
	}
	return template.HTML(out), nil
}

// Inline renders a single line such as a key point: text is escaped and
// terms become <dfn> elements.
func Inline(s string, g markup.Glossary) template.HTML {
	var sb strings.Builder
	for f := range markup.Format(s, g) {
		if f.Kind == markup.KindTerm {
			sb.WriteString(dfn(f.Text, f.Definition, f.Defined))
			continue
		}
		sb.WriteString(html.EscapeString(f.Text))
	}
	return template.HTML(sb.String())
}

func dfn(term, definition string, defined bool) string {
	if !defined {
		return "<strong>" + html.EscapeString(term) + "</strong>"
	}
	if definition == "" {
		definition = Placeholder
	}
	return `<dfn class="term" title="` + html.EscapeString(definition) + `">` + html.EscapeString(term) + "</dfn>"
}

type sectionView struct {
	Index     int
	Anchor    string
	Heading   string
	Body      template.HTML
	KeyPoints []template.HTML
	Citations []string
	Active    bool
}

type glossaryView struct {
	Term       string
	Definition string
	Missing    bool
}

type pageData struct {
	Doc      *wiki.Document
	Sections []sectionView
	Glossary []glossaryView
	ShareURL string
}

// Page writes a complete HTML page for doc: a table of contents, every
// section with a section-<i> anchor, and the glossary.
func Page(w io.Writer, doc *wiki.Document, g glossary.Map, opts PageOptions) error {
	data := pageData{Doc: doc, ShareURL: opts.ShareURL}
	for i, sec := range doc.Sections {
		body, err := Content(sec.Content, g)
		if err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
		v := sectionView{
			Index:     i,
			Anchor:    navigator.Fragment(i),
			Heading:   sec.Heading,
			Body:      body,
			Citations: sec.Citations,
			Active:    i == opts.Active,
		}
		for _, kp := range sec.KeyPoints {
			v.KeyPoints = append(v.KeyPoints, Inline(kp, g))
		}
		data.Sections = append(data.Sections, v)
	}
	for _, e := range g.Entries() {
		gv := glossaryView{Term: e.Term, Definition: e.Definition}
		if gv.Definition == "" {
			gv.Definition, gv.Missing = Placeholder, true
		}
		data.Glossary = append(data.Glossary, gv)
	}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
