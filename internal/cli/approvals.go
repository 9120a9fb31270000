package cli

import (
	"drawboard/internal/storage"

	"github.com/spf13/cobra"
)

func newApprovalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approvals",
		Short: "Resolve destructive actions requested by MCP clients",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pending approvals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			pending, err := a.Approvals().Pending()
			if err != nil {
				return writeErr(cmd, err)
			}
			if pending == nil {
				pending = []storage.Approval{}
			}
			return writeOut(cmd, app, map[string]any{"data": pending})
		},
	})
	cmd.AddCommand(newApprovalResolveCmd(app, "approve", true))
	cmd.AddCommand(newApprovalResolveCmd(app, "reject", false))
	return cmd
}

func newApprovalResolveCmd(app *App, verb string, approved bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <approval-id>",
		Short: "Record the decision for a pending approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if err := a.Approvals().Resolve(args[0], approved); err != nil {
				return writeErr(cmd, err)
			}
			status := storage.ApprovalRejected
			if approved {
				status = storage.ApprovalApproved
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": args[0], "status": status}})
		},
	}
}
