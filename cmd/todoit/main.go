// Package main implements the todoit CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hipotures/todoit/internal/config"
	"github.com/hipotures/todoit/internal/manager"
	"github.com/hipotures/todoit/internal/storage/sqlite"
)

var (
	dbPath       string
	actorFlag    string
	outputFormat string

	store *sqlite.Store
	mgr   *manager.Manager
)

var rootCmd = &cobra.Command{
	Use:   "todoit",
	Short: "todoit - hierarchical TODO lists with cross-list dependencies",
	Long: `todoit manages ordered, hierarchical TODO lists backed by SQLite.

Items live in named lists, nest up to ten levels deep, block each
other across lists, and carry key-value properties and completion
states.
Parent status is derived from subitems; 'item next' picks the most
useful pending item to work on.

The database is a single file, discovered as .todoit/todoit.db upward
from the working directory (override with --db or TODOIT_DB_PATH).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
			store = nil
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// storelessCommands run without opening a database
var storelessCommands = map[string]bool{
	"version":    true,
	"schema":     true,
	"help":       true,
	"completion": true,
	"__complete": true,
}

func needsStore(cmd *cobra.Command) bool {
	if cmd == rootCmd {
		return false
	}
	top := cmd
	for top.Parent() != nil && top.Parent() != rootCmd {
		top = top.Parent()
	}
	return !storelessCommands[top.Name()]
}

// initRuntime loads config, validates the output format and, for
// commands that need it, opens the store and builds the manager.
func initRuntime(cmd *cobra.Command) error {
	if err := config.Initialize(); err != nil {
		return err
	}
	if outputFormat == "" {
		outputFormat = config.GetString("output.format")
	}
	if !validOutputFormat(outputFormat) {
		return fmt.Errorf("unknown output format %q (want table, vertical, json, yaml or xml)", outputFormat)
	}
	if !needsStore(cmd) {
		return nil
	}

	path := config.ResolveDBPath(dbPath)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	var err error
	store, err = sqlite.New(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	noteVersionChange(cmd.Context(), store)

	scope := manager.NewAccessScope(
		config.GetStringSlice("force-tags"),
		config.GetStringSlice("filter-tags"),
	)
	mgr = manager.New(store, manager.Options{
		Scope: scope,
		Actor: config.ResolveActor(actorFlag),
	})
	return nil
}

func init() {
	// Set here rather than in the rootCmd literal: initRuntime refers
	// back to rootCmd via needsStore, which would be an initialization
	// cycle in a package-level initializer.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initRuntime(cmd)
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default: discovered .todoit/todoit.db)")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "actor recorded in history (default: $TODOIT_ACTOR, then $USER)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, vertical, json, yaml or xml")

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Lists and items:"},
		&cobra.Group{ID: "relations", Title: "Dependencies and tags:"},
		&cobra.Group{ID: "data", Title: "Data and reporting:"},
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
