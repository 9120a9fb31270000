// Package cli is the drawboard command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	drawapp "drawboard/internal/app"
	"drawboard/internal/config"

	"github.com/spf13/cobra"
)

type App struct {
	DataDir    string
	DBPath     string
	ActorID    string
	RedisURL   string
	PrettyJSON bool

	opts []drawapp.Option
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:          "drawboard",
		Short:        "Freeform diagram editor for people and agents",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve diagrams to an MCP client over stdio
  drawboard mcp

  # Broadcast commits to WebSocket clients
  drawboard hub --addr :8790

  # Script diagrams
  drawboard diagrams create --name "Orders"
  drawboard diagrams add-shape <diagram-id> --kind rect --x 10 --y 10 --w 120 --h 60
`),
	}

	cmd.PersistentFlags().StringVar(&app.DataDir, "data-dir", cfg.DataDir, "Data directory")
	cmd.PersistentFlags().StringVar(&app.DBPath, "db", envOr("DRAWBOARD_DB_PATH", ""), "Database path (default: <data-dir>/drawboard.db)")
	cmd.PersistentFlags().StringVar(&app.ActorID, "actor", cfg.ActorID, "Actor id stamped on commits")
	cmd.PersistentFlags().StringVar(&app.RedisURL, "redis", cfg.RedisURL, "Redis URL for collaboration (empty disables it)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newMCPCmd(app))
	cmd.AddCommand(newHubCmd(app))
	cmd.AddCommand(newDiagramsCmd(app))
	cmd.AddCommand(newSchemaCmd(app))
	cmd.AddCommand(newApprovalsCmd(app))

	return cmd
}

// resolveConfig merges the environment configuration with flag overrides.
func (app *App) resolveConfig() config.Config {
	cfg := config.Load()
	cfg.DataDir = app.DataDir
	cfg.DBPath = app.DBPath
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "drawboard.db")
	}
	cfg.ActorID = app.ActorID
	cfg.RedisURL = app.RedisURL
	return cfg
}

// open builds a short-lived app for one command. close drains pending
// commits before the process exits.
func (app *App) open() (*drawapp.App, func(), error) {
	a, err := drawapp.New(app.resolveConfig(), app.opts...)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Shutdown(ctx)
	}
	return a, closeFn, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
