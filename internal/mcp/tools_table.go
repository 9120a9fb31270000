package mcpserver

import (
	"context"
	"fmt"

	"drawboard/internal/domain"
	"drawboard/internal/geometry"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTableTools() {
	// ── add_table ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_table",
		mcp.WithDescription("Add a rows × cols table. Cells are addressed by flat index, row-major, counting each row's own cells."),
		mcp.WithNumber("rows", mcp.Description("Row count"), mcp.Required()),
		mcp.WithNumber("cols", mcp.Description("Column count"), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithNumber("width", mcp.Description("Width (optional)")),
		mcp.WithNumber("height", mcp.Description("Height (optional)")),
	), s.handleAddTable)

	// ── split_cell ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("split_cell",
		mcp.WithDescription("Split one table cell into rows × cols pieces. Column splits stay inside the cell's row; row splits insert whole rows."),
		mcp.WithString("elementId", mcp.Description("Table element ID"), mcp.Required()),
		mcp.WithNumber("cell", mcp.Description("Flat cell index"), mcp.Required()),
		mcp.WithNumber("rows", mcp.Description("Rows to split into (default 1)")),
		mcp.WithNumber("cols", mcp.Description("Columns to split into (default 1)")),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleSplitCell)

	// ── merge_cells ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("merge_cells",
		mcp.WithDescription("Merge adjacent cells within each row. Each row needs at least two contiguous selected cells; the first cell's content is kept."),
		mcp.WithString("elementId", mcp.Description("Table element ID"), mcp.Required()),
		mcp.WithString("cells", mcp.Description("Comma-separated flat cell indices"), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleMergeCells)

	// ── edit_cell ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("edit_cell",
		mcp.WithDescription("Set the text of a table cell"),
		mcp.WithString("elementId", mcp.Description("Table element ID"), mcp.Required()),
		mcp.WithNumber("cell", mcp.Description("Flat cell index"), mcp.Required()),
		mcp.WithString("text", mcp.Description("Cell text")),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleEditCell)

	// ── style_cells ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("style_cells",
		mcp.WithDescription("Color and/or style table cells"),
		mcp.WithString("elementId", mcp.Description("Table element ID"), mcp.Required()),
		mcp.WithString("cells", mcp.Description("Comma-separated flat cell indices"), mcp.Required()),
		mcp.WithString("color", mcp.Description("Background color (optional)")),
		mcp.WithString("style", mcp.Description(`JSON cell style, e.g. {"bold":true,"align":"center"} (optional)`)),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleStyleCells)

	// ── resize_table_column ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_table_column",
		mcp.WithDescription("Drag the divider right of a column in one row. Only that row changes."),
		mcp.WithString("elementId", mcp.Description("Table element ID"), mcp.Required()),
		mcp.WithNumber("row", mcp.Description("Row index"), mcp.Required()),
		mcp.WithNumber("col", mcp.Description("Column index left of the divider"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Drag distance in pixels"), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleResizeTableColumn)

	// ── resize_table_row ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_table_row",
		mcp.WithDescription("Drag the divider below a row"),
		mcp.WithString("elementId", mcp.Description("Table element ID"), mcp.Required()),
		mcp.WithNumber("row", mcp.Description("Row index above the divider"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Drag distance in pixels"), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleResizeTableRow)
}

func (s *Server) handleAddTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	var at *geometry.Box
	if box, ok := argBox(args); ok {
		at = &box
	}
	el, err := s.diagrams.AddTable(id, argInt(args, "rows", 0), argInt(args, "cols", 0), at)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(el))
}

// tableTarget resolves the diagram and table element of a table tool call.
func (s *Server) tableTarget(args map[string]any) (string, string, error) {
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return "", "", err
	}
	elID, err := requireString(args, "elementId")
	if err != nil {
		return "", "", err
	}
	return id, elID, nil
}

func (s *Server) handleSplitCell(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, elID, err := s.tableTarget(args)
	if err != nil {
		return nil, err
	}
	cell := argInt(args, "cell", -1)
	rows, cols := argInt(args, "rows", 1), argInt(args, "cols", 1)
	changed, err := s.diagrams.SplitCell(id, elID, cell, rows, cols)
	if err != nil {
		return nil, err
	}
	if !changed {
		return textResult(fmt.Sprintf("Cell %d was not split (out of range or 1×1)", cell)), nil
	}
	return s.elementResult(id, elID)
}

func (s *Server) handleMergeCells(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, elID, err := s.tableTarget(args)
	if err != nil {
		return nil, err
	}
	cells, err := argInts(args, "cells")
	if err != nil {
		return nil, err
	}
	changed, err := s.diagrams.MergeCells(id, elID, cells)
	if err != nil {
		return nil, err
	}
	if !changed {
		return textResult("Nothing merged: no row had two or more adjacent selected cells"), nil
	}
	return s.elementResult(id, elID)
}

func (s *Server) handleEditCell(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, elID, err := s.tableTarget(args)
	if err != nil {
		return nil, err
	}
	text, _ := args["text"].(string)
	cell := argInt(args, "cell", -1)
	if err := s.diagrams.EditCellText(id, elID, cell, text); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Cell %d updated", cell)), nil
}

func (s *Server) handleStyleCells(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, elID, err := s.tableTarget(args)
	if err != nil {
		return nil, err
	}
	cells, err := argInts(args, "cells")
	if err != nil {
		return nil, err
	}
	var color *string
	if c := argString(args, "color"); c != "" {
		color = &c
	}
	var style *domain.CellStyle
	if raw := argString(args, "style"); raw != "" {
		style = &domain.CellStyle{}
		if err := parseJSON(raw, style); err != nil {
			return nil, fmt.Errorf("invalid style JSON: %w", err)
		}
	}
	n, err := s.diagrams.StyleCells(id, elID, cells, color, style)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Styled %d cell(s)", n)), nil
}

func (s *Server) handleResizeTableColumn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, elID, err := s.tableTarget(args)
	if err != nil {
		return nil, err
	}
	dx, _ := argFloat(args, "dx")
	if err := s.diagrams.ResizeColumn(id, elID, argInt(args, "row", -1), argInt(args, "col", -1), dx); err != nil {
		return nil, err
	}
	return s.elementResult(id, elID)
}

func (s *Server) handleResizeTableRow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, elID, err := s.tableTarget(args)
	if err != nil {
		return nil, err
	}
	dy, _ := argFloat(args, "dy")
	if err := s.diagrams.ResizeRow(id, elID, argInt(args, "row", -1), dy); err != nil {
		return nil, err
	}
	return s.elementResult(id, elID)
}
