package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

const documentHelp = "The document as JSON or YAML: title, summary, readingTimeMinutes, sections (heading, content, keyPoints, citations) and relatedTopics"

var extractGlossaryTool = mcp.NewTool("extract_glossary",
	mcp.WithDescription("List the glossary terms emphasized with **term** in a document, with the definition found after the first occurrence of each term."),
	mcp.WithString("document",
		mcp.Required(),
		mcp.Description(documentHelp),
	),
)

var formatSectionTool = mcp.NewTool("format_section",
	mcp.WithDescription("Split one section's content into plain text and glossary-term fragments."),
	mcp.WithString("document",
		mcp.Required(),
		mcp.Description(documentHelp),
	),
	mcp.WithNumber("section",
		mcp.Required(),
		mcp.Description("Zero-based section index"),
	),
)

var exportMarkdownTool = mcp.NewTool("export_markdown",
	mcp.WithDescription("Render a document as a Markdown export."),
	mcp.WithString("document",
		mcp.Required(),
		mcp.Description(documentHelp),
	),
)

var encodeShareLinkTool = mcp.NewTool("encode_share_link",
	mcp.WithDescription("Encode a document into a self-contained share URL."),
	mcp.WithString("document",
		mcp.Required(),
		mcp.Description(documentHelp),
	),
	mcp.WithNumber("section",
		mcp.Description("Section to deep-link to (optional)"),
	),
	mcp.WithString("base_url",
		mcp.Description("Origin and path of the viewer (defaults to the configured base URL)"),
	),
)

var decodeShareLinkTool = mcp.NewTool("decode_share_link",
	mcp.WithDescription("Decode a share URL or bare share value back into the document JSON."),
	mcp.WithString("link",
		mcp.Required(),
		mcp.Description("A share URL or the value of its share parameter"),
	),
)
