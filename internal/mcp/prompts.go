package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("er_diagram",
		mcp.WithPromptDescription("Draw an entity diagram of a linked schema: one table element per entity"),
		mcp.WithArgument("diagramName",
			mcp.ArgumentDescription("Name for the new diagram"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("schemaSourceId",
			mcp.ArgumentDescription("Schema source to draw"),
			mcp.RequiredArgument(),
		),
	), s.handleERDiagramPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("tidy_diagram",
		mcp.WithPromptDescription("Clean up the layout of an existing diagram"),
		mcp.WithArgument("diagramId",
			mcp.ArgumentDescription("Diagram to tidy"),
			mcp.RequiredArgument(),
		),
	), s.handleTidyPrompt)
}

func (s *Server) handleERDiagramPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := req.Params.Arguments["diagramName"]
	sourceID := req.Params.Arguments["schemaSourceId"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Draw schema %s as diagram %q", sourceID, name),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Create an entity diagram named "%s" from schema source %s. Follow these steps:

1. Use create_diagram with schemaSourceId %s
2. Use list_schema_tables to get the entity names
3. For each entity, use add_table with 2 columns and one row per attribute plus a header row
4. Use edit_cell to write the entity name in cell 0, then merge_cells on the header row
5. Use style_cells to make the header bold with a light background
6. Use set_related_tables to link each table element to its entity
7. Finish with arrange_elements so nothing overlaps`, name, sourceID, sourceID),
				},
			},
		},
	}, nil
}

func (s *Server) handleTidyPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	diagramID := req.Params.Arguments["diagramId"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Tidy diagram %s", diagramID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Tidy up diagram %s:

1. Use set_active_diagram and list_elements to see what is there
2. Group elements that belong together and use align_elements on each group
3. Use distribute_elements on rows or columns of three or more
4. Bring labels in front of the shapes they sit on with reorder_elements
5. Do not delete anything without asking`, diagramID),
				},
			},
		},
	}, nil
}
