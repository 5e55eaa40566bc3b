package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hipotures/todoit/internal/ui"
)

var tagCmd = &cobra.Command{
	Use:     "tag",
	Short:   "Global tags for grouping lists",
	GroupID: "relations",
}

var tagCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a tag (colors follow alphabetical order)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := mgr.CreateTag(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return emitOK(tag, "Created tag %s", ui.RenderTag(tag))
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := mgr.ListTags(cmd.Context())
		if err != nil {
			return err
		}
		return emitResult(tags, func() string {
			if len(tags) == 0 {
				return "No tags."
			}
			return renderTags(tags)
		}, nil)
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a tag and unassign it everywhere",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !ui.PromptYesNo(fmt.Sprintf("Delete tag %q from every list?", args[0]), false) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := mgr.DeleteTag(cmd.Context(), args[0]); err != nil {
			return err
		}
		return emitOK(map[string]string{"deleted": args[0]}, "Deleted tag %q", args[0])
	},
}

func init() {
	tagDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	tagCmd.AddCommand(tagCreateCmd, tagListCmd, tagDeleteCmd)
	rootCmd.AddCommand(tagCmd)
}
