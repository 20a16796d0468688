package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pagedoc/internal/clipboard"
	"pagedoc/internal/content"
	"pagedoc/internal/domain"
	"pagedoc/internal/editor"
)

func (s *Server) registerEditingTools() {
	s.mcp.AddTool(
		mcp.NewTool("apply_formatting",
			mcp.WithDescription("Apply formatting. bold and underline toggle over a character range of one block; align sets the alignment of the selected blocks, or of blockId when nothing is selected."),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
			mcp.WithString("kind", mcp.Description("bold, italic, underline or align"), mcp.Required()),
			mcp.WithString("value", mcp.Description("For align: left, center or right")),
			mcp.WithString("blockId", mcp.Description("Block to format")),
			mcp.WithNumber("start", mcp.Description("Range start, in characters")),
			mcp.WithNumber("end", mcp.Description("Range end, in characters")),
		),
		s.handleApplyFormatting,
	)

	s.mcp.AddTool(
		mcp.NewTool("select_blocks",
			mcp.WithDescription("Replace the block selection. Pass \"all\" to select every block or an empty list to clear it."),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
			mcp.WithString("blockIds", mcp.Description("Comma-separated block ids, or \"all\"")),
		),
		s.handleSelectBlocks,
	)

	s.mcp.AddTool(
		mcp.NewTool("copy_selection",
			mcp.WithDescription("Serialize the selected blocks as plain text, HTML and JSON"),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
		),
		s.handleCopySelection,
	)

	s.mcp.AddTool(
		mcp.NewTool("delete_selection",
			mcp.WithDescription("Delete every selected block"),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
		),
		s.handleDeleteSelection,
	)

	s.mcp.AddTool(
		mcp.NewTool("paste_text",
			mcp.WithDescription("Paste clipboard data into a block. Multi-line text, HTML or pagedoc JSON becomes blocks; a single line is inserted at the end of the block."),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
			mcp.WithString("blockId", mcp.Description("Block to paste into"), mcp.Required()),
			mcp.WithString("text", mcp.Description("Plain text")),
			mcp.WithString("html", mcp.Description("HTML fragment")),
			mcp.WithString("json", mcp.Description("Serialized pagedoc blocks")),
		),
		s.handlePasteText,
	)

	s.mcp.AddTool(
		mcp.NewTool("undo",
			mcp.WithDescription("Undo the last committed change"),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
		),
		s.handleUndo,
	)

	s.mcp.AddTool(
		mcp.NewTool("redo",
			mcp.WithDescription("Redo the last undone change"),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
		),
		s.handleRedo,
	)
}

func (s *Server) handleApplyFormatting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()
	kind := req.GetString("kind", "")
	switch kind {
	case editor.FormatBold, editor.FormatItalic, editor.FormatUnderline, editor.FormatAlign:
	default:
		return nil, fmt.Errorf("unknown formatting kind %q", kind)
	}

	if blockID := req.GetString("blockId", ""); blockID != "" {
		if domain.IndexOf(ed.Blocks(), blockID) < 0 {
			return nil, fmt.Errorf("block %s not found", blockID)
		}
		ed.Focus(blockID, editor.Caret{Start: getInt(args, "start", 0), End: getInt(args, "end", 0)})
	}
	if !ed.ApplyFormatting(kind, req.GetString("value", "")) {
		return textResult("Nothing changed"), nil
	}
	s.emitDocumentChanged(ctx, docID)
	return textResult(fmt.Sprintf("Applied %s", kind)), nil
}

func (s *Server) handleSelectBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	switch raw := req.GetString("blockIds", ""); raw {
	case "all":
		ed.SelectAll()
	case "":
		ed.ClearSelection()
	default:
		ed.Select(splitIDs(raw)...)
	}
	return jsonResult(map[string]any{"selected": ed.Selected()})
}

func (s *Server) handleCopySelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	p, ok := ed.Copy()
	if !ok {
		return textResult("Nothing selected"), nil
	}
	return jsonResult(p)
}

func (s *Server) handleDeleteSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	if !ed.DeleteSelected() {
		return textResult("Nothing selected"), nil
	}
	s.emitDocumentChanged(ctx, docID)
	return textResult("Selection deleted"), nil
}

func (s *Server) handlePasteText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	blockID := req.GetString("blockId", "")
	blocks := ed.Blocks()
	i := domain.IndexOf(blocks, blockID)
	if i < 0 {
		return nil, fmt.Errorf("block %s not found", blockID)
	}
	p := clipboard.Payload{
		Text: req.GetString("text", ""),
		HTML: req.GetString("html", ""),
		JSON: req.GetString("json", ""),
	}

	if surface := ed.SurfaceOf(blockID); surface != nil && surface.Paste(blockID, p) {
		s.emitDocumentChanged(ctx, docID)
		return textResult("Pasted as blocks"), nil
	}
	// Inline paste: append the text the way a host text field would.
	if p.Text == "" {
		return textResult("Nothing to paste"), nil
	}
	segs := blocks[i].Content
	ed.SetBlockContent(blockID, content.InsertText(segs, content.Length(segs), p.Text))
	s.emitDocumentChanged(ctx, docID)
	return textResult("Pasted inline"), nil
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	if !ed.Undo() {
		return textResult("Nothing to undo"), nil
	}
	s.emitDocumentChanged(ctx, docID)
	return textResult("Undone"), nil
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, ed, err := s.editorFor(ctx, req)
	if err != nil {
		return nil, err
	}
	if !ed.Redo() {
		return textResult("Nothing to redo"), nil
	}
	s.emitDocumentChanged(ctx, docID)
	return textResult("Redone"), nil
}
