// Package mcpserver exposes diagram editing to AI agents over the Model
// Context Protocol.
package mcpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"drawboard/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for drawboard.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue

	diagrams *service.DiagramService
	schemas  *service.SchemaService

	mu              sync.Mutex
	activeDiagramID string // set by set_active_diagram
}

// Deps holds everything the MCP server needs from the app layer.
type Deps struct {
	Emitter         EventEmitter
	Diagrams        *service.DiagramService
	Schemas         *service.SchemaService // optional
	ApprovalDB      *sql.DB                // when set, approvals go through SQLite (standalone mode)
	ApprovalTimeout time.Duration
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	if deps.Emitter == nil {
		deps.Emitter = service.NoopEmitter{}
	}
	approval := NewApprovalQueue(ctx, deps.Emitter)
	if deps.ApprovalDB != nil {
		approval.SetDB(deps.ApprovalDB)
	}
	approval.SetTimeout(deps.ApprovalTimeout)

	s := &Server{
		emitter:  deps.Emitter,
		approval: approval,
		diagrams: deps.Diagrams,
		schemas:  deps.Schemas,
	}

	s.mcp = server.NewMCPServer(
		"drawboard-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerDiagramTools()
	s.registerElementTools()
	s.registerTableTools()
	if s.schemas != nil {
		s.registerSchemaTools()
	}
	s.registerResources()
	s.registerPrompts()

	return s
}

// MCP returns the underlying server, e.g. for an SSE or HTTP transport.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) bool {
	return s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) bool {
	return s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

func boolPtr(v bool) *bool { return &v }

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

// resolveDiagramID returns the diagramId from tool args or falls back to
// the active diagram.
func (s *Server) resolveDiagramID(args map[string]any) (string, error) {
	if id := argString(args, "diagramId"); id != "" {
		return id, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeDiagramID != "" {
		return s.activeDiagramID, nil
	}
	return "", fmt.Errorf("no diagramId provided and no active diagram set (use set_active_diagram first)")
}
