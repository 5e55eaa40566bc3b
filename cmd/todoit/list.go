package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hipotures/todoit/internal/manager"
	"github.com/hipotures/todoit/internal/types"
	"github.com/hipotures/todoit/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "Create and manage TODO lists",
	GroupID: "core",
}

var listCreateCmd = &cobra.Command{
	Use:   "create <key> [title...]",
	Short: "Create a new list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		title := strings.Join(args[1:], " ")
		if title == "" {
			title = key
		}
		desc, _ := cmd.Flags().GetString("description")
		list, err := mgr.CreateList(cmd.Context(), key, title, manager.CreateListOptions{Description: desc})
		if err != nil {
			return err
		}
		return emitOK(list, "Created list %q (%s)", list.ListKey, list.Title)
	},
}

// listDetail is the `list show` payload
type listDetail struct {
	List  *types.List   `json:"list"`
	Tags  []*types.Tag  `json:"tags,omitempty"`
	Items []*types.Item `json:"items"`
}

var listShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show one list with its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		key := args[0]
		list, err := mgr.GetList(ctx, key)
		if err != nil {
			return hintListKey(ctx, err, key)
		}
		tags, err := mgr.GetListTags(ctx, key)
		if err != nil {
			return err
		}
		items, err := mgr.GetListItems(ctx, key, nil, 0)
		if err != nil {
			return err
		}
		detail := &listDetail{List: list, Tags: tags, Items: items}
		return emitResult(detail, func() string {
			var b strings.Builder
			b.WriteString(renderListVertical(list))
			if len(tags) > 0 {
				names := make([]string, 0, len(tags))
				for _, tag := range tags {
					names = append(names, ui.RenderTag(tag))
				}
				b.WriteString("\nTags: " + strings.Join(names, " ") + "\n")
			}
			if len(items) > 0 {
				b.WriteString("\n" + renderItems(items))
			}
			return b.String()
		}, nil)
	},
}

var listAllCmd = &cobra.Command{
	Use:   "all",
	Short: "List every TODO list",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		includeArchived, _ := cmd.Flags().GetBool("include-archived")
		limit, _ := cmd.Flags().GetInt("limit")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		var (
			lists []*types.List
			err   error
		)
		if len(tags) > 0 {
			lists, err = mgr.GetListsByTag(ctx, tags)
		} else {
			lists, err = mgr.ListAll(ctx, includeArchived, limit)
		}
		if err != nil {
			return err
		}
		return emitResult(lists, func() string {
			if len(lists) == 0 {
				return "No lists found."
			}
			return renderLists(lists)
		}, func() string {
			if len(lists) == 0 {
				return "No lists found."
			}
			return renderListsVertical(lists)
		})
	},
}

var listDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a list and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		key := args[0]
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !ui.PromptYesNo(fmt.Sprintf("Delete list %q and all its items?", key), false) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := mgr.DeleteList(ctx, key); err != nil {
			return hintListKey(ctx, err, key)
		}
		return emitOK(map[string]string{"deleted": key}, "Deleted list %q", key)
	},
}

var listArchiveCmd = &cobra.Command{
	Use:   "archive <key>",
	Short: "Archive a list (hidden from default listing)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		force, _ := cmd.Flags().GetBool("force")
		list, err := mgr.ArchiveList(ctx, args[0], force)
		if err != nil {
			return hintListKey(ctx, err, args[0])
		}
		return emitOK(list, "Archived list %q", list.ListKey)
	},
}

var listUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <key>",
	Short: "Restore an archived list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		list, err := mgr.UnarchiveList(ctx, args[0])
		if err != nil {
			return hintListKey(ctx, err, args[0])
		}
		return emitOK(list, "Unarchived list %q", list.ListKey)
	},
}

var listLinkCmd = &cobra.Command{
	Use:   "link <source> <target>",
	Short: "Create a linked copy of a list with all items reset to pending",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		title, _ := cmd.Flags().GetString("title")
		target, err := mgr.LinkList(ctx, args[0], args[1], title)
		if err != nil {
			return hintListKey(ctx, err, args[0])
		}
		return emitOK(target, "Linked %q -> %q", args[0], target.ListKey)
	},
}

var listTagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage the tags assigned to a list",
}

var listTagAddCmd = &cobra.Command{
	Use:   "add <list> <tag>",
	Short: "Assign a tag to a list (creates the tag if needed)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tag, err := mgr.AddListTag(ctx, args[0], args[1])
		if err != nil {
			return hintListKey(ctx, err, args[0])
		}
		return emitOK(tag, "Tagged %q with %s", args[0], ui.RenderTag(tag))
	},
}

var listTagRemoveCmd = &cobra.Command{
	Use:   "remove <list> <tag>",
	Short: "Remove a tag from a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := mgr.RemoveListTag(ctx, args[0], args[1]); err != nil {
			return hintListKey(ctx, err, args[0])
		}
		return emitOK(map[string]string{"list": args[0], "removed": args[1]}, "Removed tag %q from %q", args[1], args[0])
	},
}

var listTagListCmd = &cobra.Command{
	Use:   "list <list>",
	Short: "Show the tags assigned to a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tags, err := mgr.GetListTags(ctx, args[0])
		if err != nil {
			return hintListKey(ctx, err, args[0])
		}
		return emitResult(tags, func() string {
			if len(tags) == 0 {
				return "No tags."
			}
			return renderTags(tags)
		}, nil)
	},
}

func init() {
	listCreateCmd.Flags().StringP("description", "d", "", "list description")

	listAllCmd.Flags().Bool("include-archived", false, "include archived lists")
	listAllCmd.Flags().Int("limit", 0, "maximum number of lists (0 = all)")
	listAllCmd.Flags().StringSlice("tag", nil, "only lists carrying any of these tags")

	listDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	listArchiveCmd.Flags().BoolP("force", "f", false, "archive even with incomplete items")
	listLinkCmd.Flags().String("title", "", "title for the new list (default: source title)")

	listTagCmd.AddCommand(listTagAddCmd, listTagRemoveCmd, listTagListCmd)
	listCmd.AddCommand(
		listCreateCmd, listShowCmd, listAllCmd, listDeleteCmd,
		listArchiveCmd, listUnarchiveCmd, listLinkCmd, listTagCmd,
		newPropertyCommand(propertyScopeList),
	)
	rootCmd.AddCommand(listCmd)
}
