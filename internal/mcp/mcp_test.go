package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"drawboard/internal/domain"
	"drawboard/internal/service"
	"drawboard/internal/storage"

	"github.com/mark3labs/mcp-go/mcp"
)

func newTestServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), filepath.Join(dir, "data"))
	if err != nil {
		t.Fatal(err)
	}
	diagrams := service.NewDiagramService(storage.NewDiagramStore(db), nil, domain.Actor{ID: "agent", Name: "Agent"})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = diagrams.Close(ctx)
		db.Close()
	})
	return New(context.Background(), Deps{Diagrams: diagrams, ApprovalTimeout: time.Second}), db
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) string {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("tool error: %v", err)
	}
	return res.Content[0].(mcp.TextContent).Text
}

func TestToolsBuildADiagram(t *testing.T) {
	s, _ := newTestServer(t)

	var d diagramSummary
	if err := json.Unmarshal([]byte(call(t, s.handleCreateDiagram, map[string]any{"name": "shop"})), &d); err != nil {
		t.Fatal(err)
	}

	var a, b elementSummary
	_ = json.Unmarshal([]byte(call(t, s.handleAddElement, map[string]any{
		"kind": "rect", "x": 0.0, "y": 0.0, "width": 100.0, "height": 50.0, "fillColor": "#fde68a",
	})), &a)
	_ = json.Unmarshal([]byte(call(t, s.handleAddElement, map[string]any{
		"kind": "circle", "x": 300.0, "y": 80.0, "width": 60.0, "height": 60.0,
	})), &b)
	if a.FillColor != "#fde68a" || a.ZIndex != 1 || b.ZIndex != 2 {
		t.Fatalf("a=%+v b=%+v", a, b)
	}

	call(t, s.handleAlignElements, map[string]any{"elementIds": a.ID + "," + b.ID, "mode": "top"})
	call(t, s.handleReorderElements, map[string]any{"elementIds": a.ID, "action": "front"})

	var listed []elementSummary
	_ = json.Unmarshal([]byte(call(t, s.handleListElements, map[string]any{})), &listed)
	if len(listed) != 2 || listed[1].ID != a.ID || listed[0].Y != 0 {
		t.Errorf("listed = %+v", listed)
	}
}

func TestToolsTables(t *testing.T) {
	s, _ := newTestServer(t)
	call(t, s.handleCreateDiagram, map[string]any{"name": "t"})

	var tbl elementSummary
	_ = json.Unmarshal([]byte(call(t, s.handleAddTable, map[string]any{"rows": 2.0, "cols": 3.0})), &tbl)
	if tbl.CellCount() != 6 {
		t.Fatalf("cells = %d", tbl.CellCount())
	}

	var merged elementSummary
	_ = json.Unmarshal([]byte(call(t, s.handleMergeCells, map[string]any{"elementId": tbl.ID, "cells": "0,1,2"})), &merged)
	if len(merged.RowColWidths[0]) != 1 || merged.CellCount() != 4 {
		t.Errorf("after merge: %+v", merged.RowColWidths)
	}

	out := call(t, s.handleMergeCells, map[string]any{"elementId": tbl.ID, "cells": "0"})
	if !strings.Contains(out, "Nothing merged") {
		t.Errorf("single cell merge: %q", out)
	}

	call(t, s.handleEditCell, map[string]any{"elementId": tbl.ID, "cell": 0.0, "text": "users"})
	var split elementSummary
	_ = json.Unmarshal([]byte(call(t, s.handleSplitCell, map[string]any{"elementId": tbl.ID, "cell": 0.0, "cols": 2.0})), &split)
	if len(split.RowColWidths[0]) != 2 || split.CellData[0] != "users" {
		t.Errorf("after split: %+v %v", split.RowColWidths, split.CellData)
	}
}

func TestDeleteWaitsForApproval(t *testing.T) {
	s, _ := newTestServer(t)
	call(t, s.handleCreateDiagram, map[string]any{"name": "d"})
	var a elementSummary
	_ = json.Unmarshal([]byte(call(t, s.handleAddElement, map[string]any{"kind": "text", "text": "hi"})), &a)

	// Reject whatever shows up in the queue.
	go func() {
		for {
			s.approval.mu.Lock()
			var id string
			for k := range s.approval.pending {
				id = k
			}
			s.approval.mu.Unlock()
			if id != "" {
				s.Reject(id)
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
	out := call(t, s.handleDeleteElements, map[string]any{"elementIds": a.ID})
	if out != "Action rejected by user" {
		t.Fatalf("out = %q", out)
	}
	var listed []elementSummary
	_ = json.Unmarshal([]byte(call(t, s.handleListElements, map[string]any{})), &listed)
	if len(listed) != 1 {
		t.Errorf("element was deleted despite rejection")
	}
}

func TestApprovalViaDB(t *testing.T) {
	s, db := newTestServer(t)
	s.approval.SetDB(db.Conn())
	s.approval.poll = 5 * time.Millisecond
	approvals := storage.NewApprovalStore(db)

	go func() {
		for {
			pending, _ := approvals.Pending()
			if len(pending) == 1 {
				_ = approvals.Resolve(pending[0].ID, true)
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
	ok, err := s.approval.Confirm(context.Background(), "Delete 1 element(s)", []string{"x"})
	if err != nil || !ok {
		t.Fatalf("confirm = %v, %v", ok, err)
	}
	if pending, _ := approvals.Pending(); len(pending) != 0 {
		t.Errorf("approval row left behind: %+v", pending)
	}
}

func TestApprovalTimesOut(t *testing.T) {
	q := NewApprovalQueue(context.Background(), service.NoopEmitter{})
	q.SetTimeout(20 * time.Millisecond)
	if _, err := q.Request(context.Background(), "delete_elements", "x", ""); err == nil {
		t.Error("expected timeout error")
	}
}

func TestResolveDiagramIDNeedsActive(t *testing.T) {
	s, _ := newTestServer(t)
	if _, err := s.resolveDiagramID(map[string]any{}); err == nil {
		t.Error("expected error without an active diagram")
	}
	if id, _ := s.resolveDiagramID(map[string]any{"diagramId": "abc"}); id != "abc" {
		t.Errorf("id = %q", id)
	}
}

func TestDiagramIDFromURI(t *testing.T) {
	cases := map[string]string{
		"drawboard://diagram/abc-123/elements": "abc-123",
		"drawboard://diagram//elements":        "",
		"drawboard://diagram/a/b/elements":     "",
		"drawboard://diagrams":                 "",
	}
	for uri, want := range cases {
		if got := diagramIDFromURI(uri); got != want {
			t.Errorf("%s: got %q want %q", uri, got, want)
		}
	}
}
