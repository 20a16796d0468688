package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── pagedoc://documents ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"pagedoc://documents",
		"All Documents",
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentsResource)

	// ── pagedoc://document/{documentId}/pages ──────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"pagedoc://document/{documentId}/pages",
			"Pages of a Document",
		),
		s.handleDocumentPagesResource,
	)
}

func (s *Server) handleDocumentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	docs, err := s.docs.List()
	if err != nil {
		return nil, err
	}

	type documentSummary struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}

	summaries := make([]documentSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, documentSummary{ID: d.ID, Title: d.Title})
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "pagedoc://documents",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleDocumentPagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	docID := extractDocumentIDFromURI(uri)
	if docID == "" {
		return nil, fmt.Errorf("could not extract documentId from URI: %s", uri)
	}

	ed, err := s.docs.Open(ctx, docID)
	if err != nil {
		return nil, err
	}
	pages := ed.Pages()
	blocks := summarizeBlocks(ed.Blocks(), pages)

	type pageContents struct {
		ID     string         `json:"id"`
		Blocks []blockSummary `json:"blocks"`
	}
	out := make([]pageContents, len(pages))
	next := 0
	for i, p := range pages {
		out[i] = pageContents{ID: p.ID, Blocks: blocks[next : next+len(p.Blocks)]}
		next += len(p.Blocks)
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// extractDocumentIDFromURI parses "pagedoc://document/{id}/pages".
func extractDocumentIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, "pagedoc://document/")
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, "/pages")
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
