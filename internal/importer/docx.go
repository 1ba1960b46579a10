package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/tinywiki/internal/export"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// DOCXImporter handles .docx files.
type DOCXImporter struct{}

func (p *DOCXImporter) Import(r io.Reader, filename string) (*wiki.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	parsed, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var blocks []block
	for _, item := range parsed.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		switch level := docxHeadingLevel(para); {
		case level > 0:
			blocks = append(blocks, block{kind: blockHeading, level: level, text: text})
		case strings.HasPrefix(text, export.Bullet):
			blocks = append(blocks, block{kind: blockItem, text: strings.TrimPrefix(text, export.Bullet)})
		default:
			blocks = append(blocks, block{kind: blockParagraph, text: text})
		}
	}
	return assemble(blocks, filename)
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if rest, ok := strings.CutPrefix(style, "heading"); ok && len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
		return int(rest[0] - '0')
	}
	return 0
}

// paragraphText joins the paragraph's runs, wrapping bold runs in **.
func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var t strings.Builder
		for _, rc := range run.Children {
			if txt, ok := rc.(*docx.Text); ok {
				t.WriteString(txt.Text)
			}
		}
		if bold := run.RunProperties != nil && run.RunProperties.Bold != nil; bold && strings.TrimSpace(t.String()) != "" {
			buf.WriteString("**" + t.String() + "**")
		} else {
			buf.WriteString(t.String())
		}
	}
	return buf.String()
}
