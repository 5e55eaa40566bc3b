package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hipotures/todoit/internal/export"
)

var ioCmd = &cobra.Command{
	Use:     "io",
	Short:   "Exchange lists with markdown and JSON files",
	GroupID: "data",
}

var ioExportCmd = &cobra.Command{
	Use:   "export <list> <file>",
	Short: "Write a list to a markdown checklist or JSON file",
	Long: `Write a list to a file. A .json extension selects the JSON tree
format; anything else gets a markdown checklist with one task per line
and subitems indented. The write is atomic and guarded by a lock file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		listKey, path := args[0], args[1]
		if err := export.ExportFile(ctx, mgr, listKey, path); err != nil {
			return hintListKey(ctx, err, listKey)
		}
		return emitOK(map[string]string{"list": listKey, "file": path}, "Exported %q to %s", listKey, path)
	},
}

var ioImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a markdown checklist or JSON file into a list",
	Long: `Import a file, creating the list when missing and upserting items by
key. The list key defaults to the file name without extension.

With --watch the command keeps running and re-imports after every
change to the file, until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]
		listKey, _ := cmd.Flags().GetString("list")
		watch, _ := cmd.Flags().GetBool("watch")
		if listKey == "" {
			listKey = export.ListKeyFromPath(path)
		}

		result, err := export.ImportFile(ctx, mgr, listKey, path)
		if err != nil {
			return err
		}
		if !watch {
			return emitOK(result, "%s", result)
		}

		fmt.Printf("%s\nWatching %s (Ctrl-C to stop)\n", result, path)
		err = export.WatchFile(ctx, path, func() {
			res, ierr := export.ImportFile(ctx, mgr, listKey, path)
			if ierr != nil {
				fmt.Fprintf(os.Stderr, "Import failed: %v\n", ierr)
				return
			}
			fmt.Println(res)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	ioImportCmd.Flags().String("list", "", "target list key (default: file name)")
	ioImportCmd.Flags().Bool("watch", false, "re-import on every file change")

	ioCmd.AddCommand(ioExportCmd, ioImportCmd)
	rootCmd.AddCommand(ioCmd)
}
