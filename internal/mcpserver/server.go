// Package mcpserver exposes the viewer's pure operations as MCP tools so an
// agent can inspect and convert documents without a session.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Options configures the tools.
type Options struct {
	BaseURL    string // Default origin and path for encode_share_link
	ShareLimit int
}

// Server wraps an MCP server with the document tools registered.
type Server struct {
	opts Options
	mcp  *server.MCPServer
}

// NewServer creates a server with every tool registered.
func NewServer(opts Options) *Server {
	s := &Server{opts: opts}
	s.mcp = server.NewMCPServer(
		"tinywiki",
		Version,
		server.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(extractGlossaryTool, s.handleExtractGlossary)
	s.mcp.AddTool(formatSectionTool, s.handleFormatSection)
	s.mcp.AddTool(exportMarkdownTool, s.handleExportMarkdown)
	s.mcp.AddTool(encodeShareLinkTool, s.handleEncodeShareLink)
	s.mcp.AddTool(decodeShareLinkTool, s.handleDecodeShareLink)
}

// Serve runs the server on stdio. Stdout carries protocol messages, so all
// logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
