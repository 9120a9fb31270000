package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"drawboard/internal/config"
	mcpserver "drawboard/internal/mcp"
)

// ServeMCP runs drawboard as a standalone MCP server on stdin/stdout. Agent
// tool calls edit diagrams through the same services a UI would use;
// destructive calls wait for approval through the database so another
// process can resolve them.
func ServeMCP(cfg config.Config, opts ...Option) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	if err := a.Startup(ctx); err != nil {
		return err
	}

	mcpSrv := a.NewMCPServer(ctx)

	log.Println("[MCP] Starting standalone stdio server...")
	return mcpSrv.ServeStdio()
}

// NewMCPServer builds the MCP server over a's services with approvals
// routed through the database.
func (a *App) NewMCPServer(ctx context.Context) *mcpserver.Server {
	return mcpserver.New(ctx, mcpserver.Deps{
		Emitter:         a.emitter,
		Diagrams:        a.diagrams,
		Schemas:         a.schemas,
		ApprovalDB:      a.db.Conn(),
		ApprovalTimeout: a.cfg.ApprovalTimeout,
	})
}
