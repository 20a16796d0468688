package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
	"pagedoc/internal/selection"
)

func (s *Server) registerBlockTools() {
	s.mcp.AddTool(
		mcp.NewTool("get_document",
			mcp.WithDescription("Get every block of a document in order, with its type, plain text, inline markup (<b>, <u>) and page"),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
		),
		s.handleGetDocument,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_pages",
			mcp.WithDescription("List the pages of a document and the block ids laid out on each"),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
		),
		s.handleListPages,
	)

	s.mcp.AddTool(
		mcp.NewTool("insert_block",
			mcp.WithDescription("Insert a new block. Appends to the end of the document when afterId is omitted."),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
			mcp.WithString("afterId", mcp.Description("Insert after this block id; use \"^\" to insert at the start")),
			mcp.WithString("type", mcp.Description("Block type: text, h1, h2, h3, bullet, number (default text)")),
			mcp.WithString("markup", mcp.Description("Block content; <b> and <u> tags mark bold and underline")),
		),
		s.handleInsertBlock,
	)

	s.mcp.AddTool(
		mcp.NewTool("set_block_text",
			mcp.WithDescription("Replace a block's content"),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
			mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
			mcp.WithString("markup", mcp.Description("New content; <b> and <u> tags mark bold and underline"), mcp.Required()),
		),
		s.handleSetBlockText,
	)

	s.mcp.AddTool(
		mcp.NewTool("retype_block",
			mcp.WithDescription("Change a block's type. When the block is part of the selection every selected block changes."),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
			mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
			mcp.WithString("type", mcp.Description("New block type"), mcp.Required()),
		),
		s.handleRetypeBlock,
	)

	s.mcp.AddTool(
		mcp.NewTool("move_block",
			mcp.WithDescription("Move a block (or the selection it belongs to) above or below another block"),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
			mcp.WithString("blockId", mcp.Description("Block to move"), mcp.Required()),
			mcp.WithString("targetId", mcp.Description("Block to drop next to"), mcp.Required()),
			mcp.WithString("side", mcp.Description("top or bottom (default bottom)")),
		),
		s.handleMoveBlock,
	)

	s.mcp.AddTool(
		mcp.NewTool("delete_block",
			mcp.WithDescription("Delete a block. Deleting the only block leaves one empty text block."),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
			mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		),
		s.handleDeleteBlock,
	)
}

func (s *Server) handleGetDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizeBlocks(ed.Blocks(), ed.Pages()))
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizePages(ed.Pages()))
}

func (s *Server) handleInsertBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}

	t := domain.BlockType(req.GetString("type", string(domain.BlockTypeText)))
	if !t.Valid() {
		return nil, fmt.Errorf("unknown block type %q", t)
	}
	afterID := req.GetString("afterId", "")
	switch afterID {
	case "":
		if blocks := ed.Blocks(); len(blocks) > 0 {
			afterID = blocks[len(blocks)-1].ID
		}
	case "^":
		afterID = ""
	}

	id, ok := ed.InsertBlock(afterID, t, content.FromMarkup(req.GetString("markup", "")))
	if !ok {
		return nil, fmt.Errorf("block %s not found", afterID)
	}
	s.emitDocumentChanged(ctx, docID)
	return jsonResult(map[string]string{"id": id, "type": string(t)})
}

func (s *Server) handleSetBlockText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	blockID := req.GetString("blockId", "")
	if domain.IndexOf(ed.Blocks(), blockID) < 0 {
		return nil, fmt.Errorf("block %s not found", blockID)
	}
	if ed.SetBlockContent(blockID, content.FromMarkup(req.GetString("markup", ""))) {
		s.emitDocumentChanged(ctx, docID)
	}
	return textResult("Block updated"), nil
}

func (s *Server) handleRetypeBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	t := domain.BlockType(req.GetString("type", ""))
	if !t.Valid() {
		return nil, fmt.Errorf("unknown block type %q", t)
	}
	if !ed.RetypeBlocks(req.GetString("blockId", ""), t) {
		return textResult("Nothing changed"), nil
	}
	s.emitDocumentChanged(ctx, docID)
	return textResult(fmt.Sprintf("Block retyped to %s", t)), nil
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	side := selection.Bottom
	switch req.GetString("side", "bottom") {
	case "top":
		side = selection.Top
	case "bottom":
	default:
		return nil, fmt.Errorf("side must be top or bottom")
	}
	if !ed.MoveBlocks(req.GetString("blockId", ""), req.GetString("targetId", ""), side) {
		return textResult("Nothing moved"), nil
	}
	s.emitDocumentChanged(ctx, docID)
	return textResult("Block moved"), nil
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	if !ed.DeleteBlock(req.GetString("blockId", "")) {
		return textResult("Nothing deleted"), nil
	}
	s.emitDocumentChanged(ctx, docID)
	return textResult("Block deleted"), nil
}
