package cli

import (
	"github.com/spf13/cobra"

	"drawboard/internal/service"
)

func newSchemaCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Schema source commands",
	}
	cmd.AddCommand(newSchemaAddCmd(app))
	cmd.AddCommand(newSchemaListCmd(app))
	cmd.AddCommand(newSchemaTablesCmd(app))
	cmd.AddCommand(newSchemaTestCmd(app))
	cmd.AddCommand(newSchemaRemoveCmd(app))
	return cmd
}

func newSchemaAddCmd(app *App) *cobra.Command {
	var in service.CreateSourceInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a schema source",
		Example: `  drawboard schema add --name shop --driver postgres --host localhost --database shop --user app --password secret
  drawboard schema add --name model --driver erfile --host ./model.er.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			src, err := a.Schemas().CreateSource(in)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": src})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Source name")
	cmd.Flags().StringVar(&in.Driver, "driver", "", "Driver (mysql|postgres|mongodb|sqlite|erfile)")
	cmd.Flags().StringVar(&in.Host, "host", "", "Host, URI, or file path for sqlite/erfile")
	cmd.Flags().IntVar(&in.Port, "port", 0, "Port")
	cmd.Flags().StringVar(&in.Database, "database", "", "Database name")
	cmd.Flags().StringVar(&in.Username, "user", "", "Username")
	cmd.Flags().StringVar(&in.Password, "password", envOr("DRAWBOARD_SCHEMA_PASSWORD", ""), "Password (kept in the secret store)")
	cmd.Flags().StringVar(&in.SSLMode, "sslmode", "", "Postgres sslmode")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("driver")
	return cmd
}

func newSchemaListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List schema sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			sources, err := a.Schemas().ListSources()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sources})
		},
	}
}

func newSchemaTablesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tables <source-id>",
		Short: "List the entity names of a schema source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			tables, err := a.Schemas().Tables(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tables})
		},
	}
}

func newSchemaTestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "test <source-id>",
		Short: "Check that a schema source is reachable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if err := a.Schemas().TestConnection(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]bool{"ok": true}})
		},
	}
}

func newSchemaRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <source-id>",
		Short: "Remove a schema source and its stored password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if err := a.Schemas().DeleteSource(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"id": args[0]}})
		},
	}
}
