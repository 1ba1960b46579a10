package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/dgallion1/tinywiki/internal/wiki"
)

// HTMLImporter handles HTML pages and the .doc rich document export.
type HTMLImporter struct{}

var listMarker = regexp.MustCompile(`^\s*(?:[-+]|\d+\.)\s+`)

func (p *HTMLImporter) Import(r io.Reader, filename string) (*wiki.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var blocks []block
	var convErr error
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if convErr != nil {
			return
		}
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				blocks = append(blocks, block{kind: blockHeading, level: level, text: textContent(n)})
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "p", "li", "blockquote", "td":
				md, err := htmltomarkdown.ConvertNode(n)
				if err != nil {
					convErr = fmt.Errorf("convert <%s>: %w", n.Data, err)
					return
				}
				kind := blockParagraph
				if n.Data == "li" {
					kind = blockItem
				}
				blocks = append(blocks, block{kind: kind, text: normalizeMarkdown(string(md))})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if convErr != nil {
		return nil, convErr
	}

	if !hasTitle(blocks) {
		if t := findTitle(root); t != "" {
			blocks = append([]block{{kind: blockHeading, level: 1, text: t}}, blocks...)
		}
	}
	return assemble(blocks, filename)
}

// normalizeMarkdown reduces converter output to a single line of prose,
// keeping **bold** runs.
func normalizeMarkdown(md string) string {
	md = listMarker.ReplaceAllString(strings.TrimSpace(md), "")
	md = strings.TrimPrefix(md, "> ")
	md = strings.ReplaceAll(md, "__", "**")
	return strings.Join(strings.Fields(md), " ")
}

func hasTitle(blocks []block) bool {
	for _, b := range blocks {
		if b.kind == blockHeading && b.level == 1 {
			return true
		}
	}
	return false
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
