package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dgallion1/tinywiki/internal/export"
	"github.com/dgallion1/tinywiki/internal/glossary"
	"github.com/dgallion1/tinywiki/internal/markup"
	"github.com/dgallion1/tinywiki/internal/share"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

func (s *Server) handleExtractGlossary(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := documentArg(request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(glossary.Extract(doc.Sections).Entries())
}

type fragment struct {
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Definition string `json:"definition,omitempty"`
	Defined    bool   `json:"defined,omitempty"`
}

func (s *Server) handleFormatSection(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := documentArg(request)
	if errResult != nil {
		return errResult, nil
	}
	i, err := request.RequireInt("section")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: section"), nil
	}
	sec, ok := doc.Section(i)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no such section: %d (document has %d)", i, doc.SectionCount())), nil
	}

	g := glossary.Extract(doc.Sections)
	out := []fragment{}
	for f := range markup.Format(sec.Content, g) {
		fj := fragment{Kind: f.Kind.String(), Text: f.Text}
		if f.Kind == markup.KindTerm {
			fj.Definition, fj.Defined = f.Definition, f.Defined
		}
		out = append(out, fj)
	}
	return jsonResult(out)
}

func (s *Server) handleExportMarkdown(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := documentArg(request)
	if errResult != nil {
		return errResult, nil
	}
	return mcp.NewToolResultText(string(export.Markdown(doc).Data)), nil
}

func (s *Server) handleEncodeShareLink(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := documentArg(request)
	if errResult != nil {
		return errResult, nil
	}
	base := request.GetString("base_url", s.opts.BaseURL)
	if base == "" {
		return mcp.NewToolResultError("base_url is required when no default is configured"), nil
	}
	limit := s.opts.ShareLimit
	if limit == 0 {
		limit = share.DefaultLimit
	}

	link, err := share.Encode(doc, request.GetInt("section", -1), base, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode share link: %v", err)), nil
	}
	return mcp.NewToolResultText(link), nil
}

type decoded struct {
	Document *wiki.Document `json:"document"`
	Section  *int           `json:"section,omitempty"`
}

func (s *Server) handleDecodeShareLink(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link, err := request.RequireString("link")
	if err != nil || strings.TrimSpace(link) == "" {
		return mcp.NewToolResultError("missing required parameter: link"), nil
	}
	link = strings.TrimSpace(link)

	var out decoded
	if strings.Contains(link, share.Param+"=") {
		doc, section, err := share.ParseURL(link)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out.Document = doc
		if section >= 0 {
			out.Section = &section
		}
	} else {
		doc, err := share.Decode(link)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out.Document = doc
	}
	return jsonResult(out)
}

// documentArg parses the document argument. JSON is tried for input that
// looks like an object, YAML otherwise.
func documentArg(request mcp.CallToolRequest) (*wiki.Document, *mcp.CallToolResult) {
	raw, err := request.RequireString("document")
	if err != nil {
		return nil, mcp.NewToolResultError("missing required parameter: document")
	}
	raw = strings.TrimSpace(raw)
	ext := ".yaml"
	if strings.HasPrefix(raw, "{") {
		ext = ".json"
	}
	doc, err := wiki.Read(strings.NewReader(raw), ext)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return doc, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
