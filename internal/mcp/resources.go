package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	diagramsURI      = "drawboard://diagrams"
	diagramURIPrefix = "drawboard://diagram/"
	elementsSuffix   = "/elements"
)

func (s *Server) registerResources() {
	// ── drawboard://diagrams ───────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		diagramsURI,
		"All Diagrams",
		mcp.WithMIMEType("application/json"),
	), s.handleDiagramsResource)

	// ── drawboard://diagram/{diagramId}/elements ───────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			diagramURIPrefix+"{diagramId}"+elementsSuffix,
			"Elements of a Diagram",
		),
		s.handleDiagramElementsResource,
	)
}

func (s *Server) handleDiagramsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	diagrams, err := s.diagrams.ListDiagrams()
	if err != nil {
		return nil, err
	}
	summaries := make([]diagramSummary, 0, len(diagrams))
	for _, d := range diagrams {
		summaries = append(summaries, diagramSummary{
			ID: d.ID, Name: d.Name, ElementSetID: d.ElementSetID,
			SchemaSourceID: d.SchemaSourceID, Elements: len(d.Elements),
		})
	}
	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: diagramsURI, MIMEType: "application/json", Text: string(data)},
	}, nil
}

func (s *Server) handleDiagramElementsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	diagramID := diagramIDFromURI(uri)
	if diagramID == "" {
		return nil, fmt.Errorf("could not extract diagramId from URI: %s", uri)
	}
	els, err := s.diagrams.Elements(diagramID)
	if err != nil {
		return nil, err
	}
	summaries := make([]elementSummary, len(els))
	for i, el := range els {
		summaries[i] = summarize(el)
	}
	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}

// diagramIDFromURI extracts the id from "drawboard://diagram/{id}/elements".
func diagramIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, diagramURIPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, elementsSuffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
