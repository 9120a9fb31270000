package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDiagramTools() {
	// ── list_diagrams ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_diagrams",
		mcp.WithDescription("List all diagrams with their IDs and element counts"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListDiagrams)

	// ── create_diagram ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_diagram",
		mcp.WithDescription("Create an empty diagram and make it the active one"),
		mcp.WithString("name", mcp.Description("Diagram name"), mcp.Required()),
		mcp.WithString("schemaSourceId", mcp.Description("Schema source for related tables (optional)")),
	), s.handleCreateDiagram)

	// ── set_active_diagram ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_diagram",
		mcp.WithDescription("Set the diagram that later tools act on when diagramId is omitted"),
		mcp.WithString("diagramId", mcp.Description("Diagram ID"), mcp.Required()),
	), s.handleSetActiveDiagram)

	// ── link_schema ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("link_schema",
		mcp.WithDescription("Link a diagram to a schema source so elements can reference its tables. Empty schemaSourceId unlinks."),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
		mcp.WithString("schemaSourceId", mcp.Description("Schema source ID")),
	), s.handleLinkSchema)
}

type diagramSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ElementSetID   string `json:"elementSetId"`
	SchemaSourceID string `json:"schemaSourceId,omitempty"`
	Elements       int    `json:"elements"`
}

func (s *Server) handleListDiagrams(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diagrams, err := s.diagrams.ListDiagrams()
	if err != nil {
		return nil, err
	}
	out := make([]diagramSummary, 0, len(diagrams))
	for _, d := range diagrams {
		out = append(out, diagramSummary{
			ID: d.ID, Name: d.Name, ElementSetID: d.ElementSetID,
			SchemaSourceID: d.SchemaSourceID, Elements: len(d.Elements),
		})
	}
	return jsonResult(out)
}

func (s *Server) handleCreateDiagram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	d, err := s.diagrams.CreateDiagram(name, argString(args, "schemaSourceId"))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.activeDiagramID = d.ID
	s.mu.Unlock()
	return jsonResult(diagramSummary{ID: d.ID, Name: d.Name, ElementSetID: d.ElementSetID, SchemaSourceID: d.SchemaSourceID})
}

func (s *Server) handleSetActiveDiagram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "diagramId")
	if err != nil {
		return nil, err
	}
	d, err := s.diagrams.GetDiagram(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.activeDiagramID = d.ID
	s.mu.Unlock()
	return textResult(fmt.Sprintf("Active diagram set to %q (%s)", d.Name, d.ID)), nil
}

func (s *Server) handleLinkSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	sourceID := argString(args, "schemaSourceId")
	if sourceID != "" && s.schemas != nil {
		if _, err := s.schemas.GetSource(sourceID); err != nil {
			return nil, err
		}
	}
	if err := s.diagrams.LinkSchema(id, sourceID); err != nil {
		return nil, err
	}
	if sourceID == "" {
		return textResult("Schema unlinked"), nil
	}
	return textResult(fmt.Sprintf("Diagram %s linked to schema source %s", id, sourceID)), nil
}
