package cli

import (
	"time"

	drawapp "drawboard/internal/app"

	"github.com/spf13/cobra"
)

func newMCPCmd(app *App) *cobra.Command {
	var approvalTimeout int

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run the MCP server on stdin/stdout.

Destructive tool calls wait for a decision recorded with
"drawboard approvals approve|reject <id>" from another terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.resolveConfig()
			if approvalTimeout > 0 {
				cfg.ApprovalTimeout = time.Duration(approvalTimeout) * time.Second
			}
			return drawapp.ServeMCP(cfg, app.opts...)
		},
	}
	cmd.Flags().IntVar(&approvalTimeout, "approval-timeout", 0, "Seconds a destructive call waits for approval")
	return cmd
}

func newHubCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "hub",
		Short: "Broadcast diagram commits to WebSocket clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.resolveConfig()
			if addr != "" {
				cfg.HubAddr = addr
			}
			return drawapp.ServeHub(cfg, app.opts...)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $DRAWBOARD_HUB_ADDR or :8790)")
	return cmd
}
