package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/tinywiki/internal/wiki"
)

// MarkdownImporter handles Markdown exports using goldmark.
type MarkdownImporter struct{}

func (p *MarkdownImporter) Import(r io.Reader, filename string) (*wiki.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var blocks []block
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			blocks = append(blocks, block{kind: blockHeading, level: node.Level, text: inlineText(node, src)})
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				blocks = append(blocks, block{kind: blockItem, text: inlineText(item, src)})
			}
		case *ast.Paragraph, *ast.TextBlock, *ast.Blockquote:
			blocks = append(blocks, block{kind: blockParagraph, text: inlineText(node, src)})
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			blocks = append(blocks, block{kind: blockParagraph, text: blockLines(node, src)})
		}
	}
	return assemble(blocks, filename)
}

// inlineText flattens n, writing strong emphasis back as **term** and
// dropping every other piece of inline syntax.
func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteByte(' ')
			}
			return
		case *ast.String:
			sb.Write(node.Value)
			return
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				sb.Write(seg.Value(src))
			}
			return
		case *ast.Emphasis:
			if node.Level == 2 {
				sb.WriteString("**")
				for c := node.FirstChild(); c != nil; c = c.NextSibling() {
					walk(c)
				}
				sb.WriteString("**")
				return
			}
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func blockLines(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(src))
	}
	return strings.TrimSpace(sb.String())
}
