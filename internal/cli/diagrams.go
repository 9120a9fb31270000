package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"drawboard/internal/align"
	"drawboard/internal/domain"
	"drawboard/internal/editor"
	"drawboard/internal/geometry"

	"github.com/spf13/cobra"
)

func newDiagramsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "diagrams",
		Aliases: []string{"diagram"},
		Short:   "Diagram commands",
	}
	cmd.AddCommand(newDiagramsCreateCmd(app))
	cmd.AddCommand(newDiagramsListCmd(app))
	cmd.AddCommand(newDiagramsShowCmd(app))
	cmd.AddCommand(newDiagramsRenameCmd(app))
	cmd.AddCommand(newDiagramsLinkCmd(app))
	cmd.AddCommand(newDiagramsDeleteCmd(app))
	cmd.AddCommand(newDiagramsAddShapeCmd(app))
	cmd.AddCommand(newDiagramsAddTableCmd(app))
	cmd.AddCommand(newDiagramsAlignCmd(app))
	cmd.AddCommand(newDiagramsRemoveCmd(app))
	return cmd
}

func newDiagramsCreateCmd(app *App) *cobra.Command {
	var name, schemaID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a diagram",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			d, err := a.Diagrams().CreateDiagram(strings.TrimSpace(name), schemaID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": d})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Diagram name")
	cmd.Flags().StringVar(&schemaID, "schema", "", "Schema source to link")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDiagramsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List diagrams",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			diagrams, err := a.Diagrams().ListDiagrams()
			if err != nil {
				return writeErr(cmd, err)
			}
			type row struct {
				ID       string `json:"id"`
				Name     string `json:"name"`
				Elements int    `json:"elements"`
			}
			rows := make([]row, 0, len(diagrams))
			for _, d := range diagrams {
				rows = append(rows, row{ID: d.ID, Name: d.Name, Elements: len(d.Elements)})
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}
}

func newDiagramsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <diagram-id>",
		Short: "Show a diagram with its elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			d, err := a.Diagrams().GetDiagram(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": d})
		},
	}
}

func newDiagramsRenameCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "rename <diagram-id>",
		Short: "Rename a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if err := a.Diagrams().RenameDiagram(args[0], strings.TrimSpace(name)); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"id": args[0], "name": name}})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDiagramsLinkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "link <diagram-id> [schema-source-id]",
		Short: "Link a diagram to a schema source (omit the source to unlink)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			sourceID := ""
			if len(args) == 2 {
				sourceID = args[1]
				if _, err := a.Schemas().GetSource(sourceID); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := a.Diagrams().LinkSchema(args[0], sourceID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"id": args[0], "schemaSourceId": sourceID}})
		},
	}
}

func newDiagramsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <diagram-id>",
		Short: "Delete a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if _, err := a.Diagrams().GetDiagram(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := a.Diagrams().DeleteDiagram(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"id": args[0]}})
		},
	}
}

// ── Element commands ───────────────────────────────────────

func newDiagramsAddShapeCmd(app *App) *cobra.Command {
	var kind, text string
	var box geometry.Box

	cmd := &cobra.Command{
		Use:   "add-shape <diagram-id>",
		Short: "Add a rectangle, circle or text element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			var el domain.DrawElement
			switch k := domain.ElementKind(kind); k {
			case domain.ElementRect, domain.ElementCircle:
				el, err = a.Diagrams().AddShape(args[0], k, box)
				if err == nil && text != "" {
					err = a.Diagrams().EditText(args[0], el.ID, text)
				}
			case domain.ElementText:
				at := &box
				if !cmd.Flags().Changed("x") && !cmd.Flags().Changed("y") {
					at = nil
				}
				el, err = a.Diagrams().AddText(args[0], text, at)
			default:
				err = fmt.Errorf("unknown kind %q (rect|circle|text)", kind)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"id": el.ID}})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "rect", "Element kind (rect|circle|text)")
	cmd.Flags().StringVar(&text, "text", "", "Element text")
	cmd.Flags().Float64Var(&box.X, "x", 0, "Left edge")
	cmd.Flags().Float64Var(&box.Y, "y", 0, "Top edge")
	cmd.Flags().Float64Var(&box.W, "w", 120, "Width")
	cmd.Flags().Float64Var(&box.H, "h", 80, "Height")
	return cmd
}

func newDiagramsAddTableCmd(app *App) *cobra.Command {
	var rows, cols int
	var x, y float64

	cmd := &cobra.Command{
		Use:   "add-table <diagram-id>",
		Short: "Add a table element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			var at *geometry.Box
			if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
				at = &geometry.Box{X: x, Y: y}
			}
			el, err := a.Diagrams().AddTable(args[0], rows, cols, at)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"id": el.ID}})
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 3, "Row count")
	cmd.Flags().IntVar(&cols, "cols", 2, "Column count")
	cmd.Flags().Float64Var(&x, "x", 0, "Left edge")
	cmd.Flags().Float64Var(&y, "y", 0, "Top edge")
	return cmd
}

func newDiagramsAlignCmd(app *App) *cobra.Command {
	var ids []string
	var mode string

	cmd := &cobra.Command{
		Use:   "align <diagram-id>",
		Short: "Align elements (left|center-h|right|top|center-v|bottom)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := align.ParseMode(mode)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			changed, err := a.Diagrams().Align(args[0], ids, m)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]bool{"changed": changed}})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Element ids")
	cmd.Flags().StringVar(&mode, "mode", "left", "Alignment")
	_ = cmd.MarkFlagRequired("ids")
	return cmd
}

func newDiagramsRemoveCmd(app *App) *cobra.Command {
	var ids []string
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <diagram-id>",
		Short: "Delete elements from a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			removed, err := a.Diagrams().DeleteElements(cmd.Context(), args[0], ids, promptConfirmer(cmd, yes))
			if err != nil {
				return writeErr(cmd, err)
			}
			if removed == nil {
				removed = []string{}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string][]string{"removed": removed}})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Element ids")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("ids")
	return cmd
}

// promptConfirmer asks on the command's stdin unless yes is set.
func promptConfirmer(cmd *cobra.Command, yes bool) editor.Confirmer {
	return editor.ConfirmFunc(func(ctx context.Context, description string, ids []string) (bool, error) {
		if yes {
			return true, nil
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", description)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return false, nil
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}
