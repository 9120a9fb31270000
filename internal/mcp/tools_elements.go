package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"drawboard/internal/align"
	"drawboard/internal/domain"
	"drawboard/internal/editor"
	"drawboard/internal/elements"
	"drawboard/internal/geometry"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerElementTools() {
	// ── list_elements ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_elements",
		mcp.WithDescription("List the elements of a diagram in z-order (bottom first). Images are summarised, not returned."),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
		mcp.WithString("kind", mcp.Description("Filter by kind: rect, circle, text, table (optional)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListElements)

	// ── add_element ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_element",
		mcp.WithDescription("Add a rect, circle or text element. Text without a position goes to the next free slot."),
		mcp.WithString("kind", mcp.Description("Element kind: rect, circle, text"), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
		mcp.WithNumber("x", mcp.Description("X position")),
		mcp.WithNumber("y", mcp.Description("Y position")),
		mcp.WithNumber("width", mcp.Description("Width (min 20)")),
		mcp.WithNumber("height", mcp.Description("Height (min 20)")),
		mcp.WithString("text", mcp.Description("Text content (optional)")),
		mcp.WithString("fillColor", mcp.Description("Fill color (optional)")),
		mcp.WithString("strokeColor", mcp.Description("Stroke color (optional)")),
	), s.handleAddElement)

	// ── move_elements ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_elements",
		mcp.WithDescription("Move elements together by a relative offset (dx, dy)"),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Horizontal offset"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Vertical offset"), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleMoveElements)

	// ── resize_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_element",
		mcp.WithDescription("Drag one of an element's eight resize handles. The opposite edge stays put; sizes stop at 20px (50px for images)."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("handle", mcp.Description("Handle: n, ne, e, se, s, sw, w, nw"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Horizontal drag distance")),
		mcp.WithNumber("dy", mcp.Description("Vertical drag distance")),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleResizeElement)

	// ── reorder_elements ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_elements",
		mcp.WithDescription("Change the stacking order of elements"),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs"), mcp.Required()),
		mcp.WithString("action", mcp.Description("front, back, forward or backward"), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleReorderElements)

	// ── align_elements ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("align_elements",
		mcp.WithDescription("Align two or more elements along an edge or center line"),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs"), mcp.Required()),
		mcp.WithString("mode", mcp.Description("left, center-h, right, top, center-v, bottom"), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleAlignElements)

	// ── distribute_elements ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("distribute_elements",
		mcp.WithDescription("Space three or more elements with equal gaps along an axis"),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs"), mcp.Required()),
		mcp.WithString("axis", mcp.Description("horizontal or vertical"), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleDistributeElements)

	// ── arrange_elements ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_elements",
		mcp.WithDescription("Lay elements out in tidy wrapped rows from the top-left of their bounds. Omit elementIds to arrange everything."),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs (optional)")),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleArrangeElements)

	// ── delete_elements (destructive) ──────────────────
	s.mcp.AddTool(mcp.NewTool("delete_elements",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete elements with a single approval. Requires user approval."),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs to delete"), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteElements)

	// ── style_elements ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("style_elements",
		mcp.WithDescription("Change fill, stroke and text properties. Pass a JSON object with any of fillColor, fillOpacity, strokeColor, strokeOpacity, strokeWidth, fontSize, textColor, textAlign, verticalAlign."),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs"), mcp.Required()),
		mcp.WithString("style", mcp.Description(`JSON style patch, e.g. {"fillColor":"#fde68a","strokeWidth":2}`), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleStyleElements)

	// ── edit_text ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("edit_text",
		mcp.WithDescription("Replace the text of an element"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("text", mcp.Description("New text")),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleEditText)

	// ── attach_image ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("attach_image",
		mcp.WithDescription("Fill an element with an image from a local file (max 5 MB). Encoding finishes in the background."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("path", mcp.Description("Path to an image file"), mcp.Required()),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleAttachImage)

	// ── set_related_tables ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_related_tables",
		mcp.WithDescription("Link an element to tables of the diagram's schema source. Empty list clears the links."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("tables", mcp.Description("Comma-separated table names")),
		mcp.WithString("diagramId", mcp.Description("Diagram ID (optional, defaults to active diagram)")),
	), s.handleSetRelatedTables)
}

// elementSummary is a DrawElement without its image payload.
type elementSummary struct {
	domain.DrawElement
	Image    string `json:"image,omitempty"`
	HasImage bool   `json:"hasImage,omitempty"`
}

func summarize(el domain.DrawElement) elementSummary {
	return elementSummary{DrawElement: el, HasImage: el.Image != ""}
}

func (s *Server) handleListElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	els, err := s.diagrams.Elements(id)
	if err != nil {
		return nil, err
	}
	kind := domain.ElementKind(argString(args, "kind"))
	out := make([]elementSummary, 0, len(els))
	for _, el := range els {
		if kind != "" && el.Kind != kind {
			continue
		}
		out = append(out, summarize(el))
	}
	return jsonResult(out)
}

func (s *Server) handleAddElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	kind := domain.ElementKind(argString(args, "kind"))
	box, positioned := argBox(args)

	var el domain.DrawElement
	switch kind {
	case domain.ElementText:
		var at *geometry.Box
		if positioned {
			at = &box
		}
		el, err = s.diagrams.AddText(id, argString(args, "text"), at)
	case domain.ElementRect, domain.ElementCircle:
		if !positioned {
			return nil, fmt.Errorf("x and y are required for %s", kind)
		}
		el, err = s.diagrams.AddShape(id, kind, box)
	case domain.ElementTable:
		return nil, fmt.Errorf("use add_table for tables")
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	patch := editor.StylePatch{}
	if v := argString(args, "fillColor"); v != "" {
		patch.FillColor = &v
	}
	if v := argString(args, "strokeColor"); v != "" {
		patch.StrokeColor = &v
	}
	if patch.FillColor != nil || patch.StrokeColor != nil {
		if err := s.diagrams.Restyle(id, []string{el.ID}, patch); err != nil {
			return nil, err
		}
	}
	if kind != domain.ElementText {
		if text := argString(args, "text"); text != "" {
			if err := s.diagrams.EditText(id, el.ID, text); err != nil {
				return nil, err
			}
		}
	}
	return s.elementResult(id, el.ID)
}

func (s *Server) elementResult(diagramID, elID string) (*mcp.CallToolResult, error) {
	els, err := s.diagrams.Elements(diagramID)
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		if el.ID == elID {
			return jsonResult(summarize(el))
		}
	}
	return nil, fmt.Errorf("element %s: %w", elID, elements.ErrNotFound)
}

func (s *Server) handleMoveElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	ids := argIDs(args, "elementIds")
	if len(ids) == 0 {
		return nil, fmt.Errorf("elementIds is required")
	}
	dx, _ := argFloat(args, "dx")
	dy, _ := argFloat(args, "dy")
	if err := s.diagrams.MoveElements(id, ids, dx, dy); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Moved %d element(s) by (%.0f, %.0f)", len(ids), dx, dy)), nil
}

func (s *Server) handleResizeElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	elID, err := requireString(args, "elementId")
	if err != nil {
		return nil, err
	}
	h, err := geometry.ParseHandle(argString(args, "handle"))
	if err != nil {
		return nil, err
	}
	dx, _ := argFloat(args, "dx")
	dy, _ := argFloat(args, "dy")
	el, err := s.diagrams.ResizeElement(id, elID, h, dx, dy)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(el))
}

func (s *Server) handleReorderElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	action, err := elements.ParseReorderAction(argString(args, "action"))
	if err != nil {
		return nil, err
	}
	if err := s.diagrams.Reorder(id, argIDs(args, "elementIds"), action); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Reordered (%s)", action)), nil
}

func (s *Server) handleAlignElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	mode, err := align.ParseMode(argString(args, "mode"))
	if err != nil {
		return nil, err
	}
	ok, err := s.diagrams.Align(id, argIDs(args, "elementIds"), mode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult(fmt.Sprintf("Nothing to align: select at least %d elements", align.MinAlign)), nil
	}
	return textResult(fmt.Sprintf("Aligned %s", mode)), nil
}

func (s *Server) handleDistributeElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	axis, err := align.ParseAxis(argString(args, "axis"))
	if err != nil {
		return nil, err
	}
	ok, err := s.diagrams.Distribute(id, argIDs(args, "elementIds"), axis)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult(fmt.Sprintf("Nothing to distribute: select at least %d elements", align.MinDistribute)), nil
	}
	return textResult(fmt.Sprintf("Distributed %s", axis)), nil
}

func (s *Server) handleArrangeElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	ids := argIDs(args, "elementIds")
	if len(ids) == 0 {
		els, err := s.diagrams.Elements(id)
		if err != nil {
			return nil, err
		}
		for _, el := range els {
			ids = append(ids, el.ID)
		}
	}
	ok, err := s.diagrams.Arrange(id, ids)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult("Nothing to arrange"), nil
	}
	return textResult(fmt.Sprintf("Arranged %d element(s)", len(ids))), nil
}

func (s *Server) handleDeleteElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	ids := argIDs(args, "elementIds")
	if len(ids) == 0 {
		return nil, fmt.Errorf("elementIds is required")
	}
	removed, err := s.diagrams.DeleteElements(ctx, id, ids, s.approval)
	if errors.Is(err, editor.ErrRejected) {
		return textResult("Action rejected by user"), nil
	}
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted %d element(s): %s", len(removed), strings.Join(removed, ", "))), nil
}

func (s *Server) handleStyleElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	var patch editor.StylePatch
	if err := parseJSON(argString(args, "style"), &patch); err != nil {
		return nil, fmt.Errorf("invalid style JSON: %w", err)
	}
	ids := argIDs(args, "elementIds")
	if err := s.diagrams.Restyle(id, ids, patch); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Styled %d element(s)", len(ids))), nil
}

func (s *Server) handleEditText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	elID, err := requireString(args, "elementId")
	if err != nil {
		return nil, err
	}
	text, _ := args["text"].(string)
	if err := s.diagrams.EditText(id, elID, text); err != nil {
		return nil, err
	}
	return textResult("Text updated"), nil
}

func (s *Server) handleAttachImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	elID, err := requireString(args, "elementId")
	if err != nil {
		return nil, err
	}
	path, err := requireString(args, "path")
	if err != nil {
		return nil, err
	}
	// The tool call ends before encoding does; use a context that outlives it.
	if err := s.diagrams.AttachImageFile(context.WithoutCancel(ctx), id, elID, path, nil); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Image accepted for %s; it appears once encoded", elID)), nil
}

func (s *Server) handleSetRelatedTables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveDiagramID(args)
	if err != nil {
		return nil, err
	}
	elID, err := requireString(args, "elementId")
	if err != nil {
		return nil, err
	}
	tables := argIDs(args, "tables")
	if err := s.diagrams.SetRelatedTables(ctx, id, elID, tables); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Related tables of %s: %s", elID, strings.Join(tables, ", "))), nil
}
