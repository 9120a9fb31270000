package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"drawboard/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSchemaTools() {
	// ── list_schema_sources ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_schema_sources",
		mcp.WithDescription("List configured schema sources (databases and ER files)"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListSchemaSources)

	// ── list_schema_tables ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_schema_tables",
		mcp.WithDescription("List the table names a diagram's elements can be linked to"),
		mcp.WithString("schemaSourceId", mcp.Description("Schema source ID (optional, defaults to the active diagram's source)")),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListSchemaTables)

	// ── refresh_schema ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("refresh_schema",
		mcp.WithDescription("Reload a schema source's table list"),
		mcp.WithString("schemaSourceId", mcp.Description("Schema source ID"), mcp.Required()),
	), s.handleRefreshSchema)
}

func (s *Server) handleListSchemaSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources, err := s.schemas.ListSources()
	if err != nil {
		return nil, err
	}
	return jsonResult(sources)
}

func (s *Server) schemaSourceFor(args map[string]any) (string, error) {
	if id := argString(args, "schemaSourceId"); id != "" {
		return id, nil
	}
	diagramID, err := s.resolveDiagramID(args)
	if err != nil {
		return "", err
	}
	d, err := s.diagrams.GetDiagram(diagramID)
	if err != nil {
		return "", err
	}
	if d.SchemaSourceID == "" {
		return "", fmt.Errorf("diagram %s has no schema source (use link_schema)", diagramID)
	}
	return d.SchemaSourceID, nil
}

func (s *Server) handleListSchemaTables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := s.schemaSourceFor(req.GetArguments())
	if err != nil {
		return nil, err
	}
	tables, err := s.schemas.Tables(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return jsonResult(tables)
}

func (s *Server) handleRefreshSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := requireString(req.GetArguments(), "schemaSourceId")
	if err != nil {
		return nil, err
	}
	if err := s.schemas.Refresh(ctx, sourceID); err != nil {
		if errors.Is(err, service.ErrRefreshRunning) {
			return textResult("A refresh of this source is already running"), nil
		}
		return nil, err
	}
	tables, _ := s.schemas.Tables(ctx, sourceID)
	return textResult(fmt.Sprintf("Schema refreshed: %d table(s)", len(tables))), nil
}
