package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pagedoc/internal/editor"
	"pagedoc/internal/service"
)

// EventEmitter notifies the host that a tool changed a document.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Server is the MCP server for pagedoc. It exposes the editor's imperative
// command surface as tools so agents can read and edit documents.
type Server struct {
	mcp     *server.MCPServer
	emitter EventEmitter
	docs    *service.DocumentService

	mu sync.Mutex
	// Active document (set by open_document / create_document).
	activeDocID string
}

// Deps holds the dependencies passed from the app layer.
type Deps struct {
	Emitter   EventEmitter
	Documents *service.DocumentService
}

// New creates and configures an MCP server with all tools and resources.
func New(deps Deps) *Server {
	emitter := deps.Emitter
	if emitter == nil {
		emitter = service.NopEmitter{}
	}
	s := &Server{emitter: emitter, docs: deps.Documents}

	s.mcp = server.NewMCPServer(
		"pagedoc-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerNavigationTools()
	s.registerBlockTools()
	s.registerEditingTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// emitDocumentChanged notifies the host that a tool edited a document.
func (s *Server) emitDocumentChanged(ctx context.Context, docID string) {
	s.emitter.Emit(ctx, "mcp:document-changed", map[string]string{"documentId": docID})
}

func (s *Server) setActive(docID string) {
	s.mu.Lock()
	s.activeDocID = docID
	s.mu.Unlock()
}

// resolveDocID returns the documentId from tool args or falls back to the
// active document.
func (s *Server) resolveDocID(args map[string]any) (string, error) {
	if id, ok := args["documentId"].(string); ok && id != "" {
		return id, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeDocID != "" {
		return s.activeDocID, nil
	}
	return "", fmt.Errorf("no documentId provided and no active document set (use open_document first)")
}

// editorFor opens the document a tool call refers to.
func (s *Server) editorFor(ctx context.Context, req mcp.CallToolRequest) (string, *editor.Editor, error) {
	id, err := s.resolveDocID(req.GetArguments())
	if err != nil {
		return "", nil, err
	}
	ed, err := s.docs.Open(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return id, ed, nil
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}
