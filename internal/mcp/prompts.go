package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("draft_document",
		mcp.WithPromptDescription("Guide through drafting a structured document block by block"),
		mcp.WithArgument("title",
			mcp.ArgumentDescription("Title of the document"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("outline",
			mcp.ArgumentDescription("Optional outline of the sections to write"),
		),
	), s.handleDraftDocumentPrompt)
}

func (s *Server) handleDraftDocumentPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	title := req.Params.Arguments["title"]
	outline := req.Params.Arguments["outline"]
	if outline == "" {
		outline = "Choose sensible sections for the title."
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Draft the document: %s", title),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Draft a document titled "%s".

Outline: %s

Steps:
1. Use create_document with the title. It becomes the active document and holds one empty text block.
2. Use set_block_text on that first block for the opening heading, then retype_block to h1.
3. For every section, use insert_block with type h2 for the heading followed by text, bullet or number blocks for the body. Omit afterId to append.
4. Mark emphasis inline in the markup with <b>...</b> and <u>...</u>.
5. Use list_pages to check how the content falls across pages.
6. Finish with save_document.`, title, outline),
				},
			},
		},
	}, nil
}
