package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerNavigationTools() {
	s.mcp.AddTool(
		mcp.NewTool("list_documents",
			mcp.WithDescription("List all documents with their id, code, title and status"),
		),
		s.handleListDocuments,
	)

	s.mcp.AddTool(
		mcp.NewTool("create_document",
			mcp.WithDescription("Create a new draft document holding one empty text block and make it the active document"),
			mcp.WithString("title", mcp.Description("Document title"), mcp.Required()),
			mcp.WithString("code", mcp.Description("Optional document code, e.g. a reference number")),
		),
		s.handleCreateDocument,
	)

	s.mcp.AddTool(
		mcp.NewTool("open_document",
			mcp.WithDescription("Open a document and set it as the active document for later tool calls"),
			mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		),
		s.handleOpenDocument,
	)

	s.mcp.AddTool(
		mcp.NewTool("save_document",
			mcp.WithDescription("Save a document's blocks. Uses the active document if documentId is omitted."),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
		),
		s.handleSaveDocument,
	)

	s.mcp.AddTool(
		mcp.NewTool("finalize_document",
			mcp.WithDescription("Save a document one last time and mark it read-only"),
			mcp.WithString("documentId", mcp.Description("Document ID (optional, uses active document)")),
		),
		s.handleFinalizeDocument,
	)
}

func (s *Server) handleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.docs.List()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	type docSummary struct {
		ID     string `json:"id"`
		Code   string `json:"code"`
		Title  string `json:"title"`
		Status string `json:"status"`
		Blocks int    `json:"blocks"`
	}
	out := make([]docSummary, len(docs))
	for i, d := range docs {
		out[i] = docSummary{ID: d.ID, Code: d.Code, Title: d.Title, Status: string(d.Status), Blocks: len(d.Content)}
	}
	return jsonResult(out)
}

func (s *Server) handleCreateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	d, err := s.docs.Create(title, req.GetString("code", ""))
	if err != nil {
		return nil, err
	}
	s.setActive(d.ID)
	return jsonResult(map[string]any{
		"id":      d.ID,
		"title":   d.Title,
		"message": "Document created and set as active",
	})
}

func (s *Server) handleOpenDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("documentId", "")
	if id == "" {
		return nil, fmt.Errorf("documentId is required")
	}
	ed, err := s.docs.Open(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	s.setActive(id)
	return textResult(fmt.Sprintf("Opened document %s (%d blocks on %d pages)", id, len(ed.Blocks()), len(ed.Pages()))), nil
}

func (s *Server) handleSaveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	saved, err := s.docs.Save(ctx, id)
	if err != nil {
		return nil, err
	}
	if !saved {
		return textResult("Save already in progress, skipped"), nil
	}
	return textResult("Document saved"), nil
}

func (s *Server) handleFinalizeDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.docs.Finalize(ctx, id); err != nil {
		return nil, err
	}
	return textResult("Document finalized"), nil
}
