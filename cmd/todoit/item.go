package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hipotures/todoit/internal/manager"
	"github.com/hipotures/todoit/internal/types"
	"github.com/hipotures/todoit/internal/ui"
)

var itemCmd = &cobra.Command{
	Use:     "item",
	Short:   "Work with items inside a list",
	GroupID: "core",
}

var itemAddCmd = &cobra.Command{
	Use:   "add <list> [key] [content...]",
	Short: "Add an item (or a subitem with --parent)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		listKey := args[0]
		parent, _ := cmd.Flags().GetString("parent")
		interactive, _ := cmd.Flags().GetBool("interactive")

		var itemKey, content string
		if len(args) > 1 {
			itemKey = args[1]
		}
		if len(args) > 2 {
			content = strings.Join(args[2:], " ")
		}

		if interactive {
			input := &ui.ItemFormInput{Key: itemKey, Content: content, Parent: parent}
			if err := ui.RunItemForm(input); err != nil {
				return err
			}
			itemKey, content, parent = strings.TrimSpace(input.Key), input.Content, strings.TrimSpace(input.Parent)
		}
		if itemKey == "" {
			return fmt.Errorf("item key is required (or use --interactive)")
		}
		if content == "" {
			content = itemKey
		}

		item, err := mgr.AddItem(ctx, listKey, itemKey, content, manager.AddItemOptions{Parent: parent})
		if err != nil {
			return hintListKey(ctx, err, listKey)
		}
		if parent != "" {
			return emitOK(item, "Added %q under %q", item.ItemKey, parent)
		}
		return emitOK(item, "Added %q to %q", item.ItemKey, listKey)
	},
}

// itemDetail is the `item show` payload
type itemDetail struct {
	Item       *types.Item       `json:"item"`
	Path       []*types.Item     `json:"path,omitempty"`
	Properties []*types.Property `json:"properties,omitempty"`
	Blockers   []*types.Item     `json:"blockers,omitempty"`
}

var itemShowCmd = &cobra.Command{
	Use:   "show <list> <item>",
	Short: "Show one item with its properties and blockers",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		listKey, itemKey := args[0], args[1]
		parent, _ := cmd.Flags().GetString("parent")
		render, _ := cmd.Flags().GetBool("render")

		item, err := mgr.GetItem(ctx, listKey, itemKey, parent)
		if err != nil {
			return hintItemKey(ctx, err, listKey, itemKey)
		}
		path, err := mgr.GetItemPath(ctx, listKey, item.ItemKey)
		if err != nil {
			return err
		}
		props, err := mgr.GetItemProperties(ctx, listKey, item.ItemKey, parent)
		if err != nil {
			return err
		}
		blockers, err := mgr.GetItemBlockers(ctx, listKey, item.ItemKey)
		if err != nil {
			return err
		}
		detail := &itemDetail{Item: item, Path: path, Properties: props, Blockers: blockers}
		return emitResult(detail, func() string {
			var b strings.Builder
			b.WriteString(renderItemVertical(item))
			if len(path) > 1 {
				keys := make([]string, 0, len(path))
				for _, p := range path {
					keys = append(keys, p.ItemKey)
				}
				b.WriteString("Path: " + strings.Join(keys, " > ") + "\n")
			}
			if render {
				b.WriteString("\n" + ui.RenderMarkdown(item.Content, ui.GetWidth()))
			}
			if len(props) > 0 {
				b.WriteString("\n" + renderProperties(props))
			}
			if len(blockers) > 0 {
				b.WriteString("\nBlocked by:\n" + renderItems(blockers))
			}
			return b.String()
		}, nil)
	},
}

var itemStatusCmd = &cobra.Command{
	Use:   "status <list> <item> [status]",
	Short: "Change an item's status and/or completion states",
	Long: `Change a leaf item's status. Parents derive their status from their
subitems and reject direct changes.

Completion states are free-form key=value flags merged into the item:

  todoit item status backend deploy completed --state tested=true --state reviewer=kate`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		listKey, itemKey := args[0], args[1]
		parent, _ := cmd.Flags().GetString("parent")
		stateFlags, _ := cmd.Flags().GetStringArray("state")

		update := manager.StatusUpdate{Parent: parent}
		if len(args) == 3 {
			status := types.ItemStatus(args[2])
			if !status.IsValid() {
				return fmt.Errorf("invalid status %q (want pending, in_progress, completed or failed)", args[2])
			}
			update.Status = &status
		}
		states, err := parseStatePairs(stateFlags)
		if err != nil {
			return err
		}
		update.States = states
		if update.Status == nil && len(update.States) == 0 {
			return fmt.Errorf("nothing to update: give a status or at least one --state")
		}

		item, err := mgr.UpdateItemStatus(ctx, listKey, itemKey, update)
		if err != nil {
			return hintItemKey(ctx, err, listKey, itemKey)
		}
		return emitOK(item, "%s is now %s", item.ItemKey, renderStatus(item.Status))
	},
}

// parseStatePairs turns k=v flags into completion states. true/false
// values become booleans, everything else stays a string.
func parseStatePairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	states := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid state %q (want key=value)", pair)
		}
		if b, err := strconv.ParseBool(v); err == nil {
			states[k] = b
		} else {
			states[k] = v
		}
	}
	return states, nil
}

var itemNextCmd = &cobra.Command{
	Use:   "next <list>",
	Short: "Pick the next item to work on",
	Long: `Pick the next pending, unblocked item. The default strategy prefers
subitems of work already in progress; --simple just takes the first
pending item in list order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		simple, _ := cmd.Flags().GetBool("simple")
		item, err := mgr.GetNextPending(ctx, args[0], !simple)
		if err != nil {
			return hintListKey(ctx, err, args[0])
		}
		return emitResult(item, func() string {
			if item == nil {
				return "No pending items."
			}
			return renderItemVertical(item)
		}, nil)
	},
}

var itemEditCmd = &cobra.Command{
	Use:   "edit <list> <item> <content...>",
	Short: "Replace an item's content",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		parent, _ := cmd.Flags().GetString("parent")
		content := strings.Join(args[2:], " ")
		item, err := mgr.UpdateItemContent(ctx, args[0], args[1], content, parent)
		if err != nil {
			return hintItemKey(ctx, err, args[0], args[1])
		}
		return emitOK(item, "Updated %q", item.ItemKey)
	},
}

var itemDeleteCmd = &cobra.Command{
	Use:   "delete <list> <item>",
	Short: "Delete a leaf item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		parent, _ := cmd.Flags().GetString("parent")
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !ui.PromptYesNo(fmt.Sprintf("Delete item %q from %q?", args[1], args[0]), false) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := mgr.DeleteItem(ctx, args[0], args[1], parent); err != nil {
			return hintItemKey(ctx, err, args[0], args[1])
		}
		return emitOK(map[string]string{"deleted": args[1]}, "Deleted %q from %q", args[1], args[0])
	},
}

var itemTreeCmd = &cobra.Command{
	Use:   "tree <list> [item]",
	Short: "Show a list's items as a tree",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		listKey := args[0]

		var (
			forest []*manager.ItemTree
			err    error
		)
		if len(args) == 2 {
			var node *manager.ItemTree
			node, err = mgr.GetItemTree(ctx, listKey, args[1])
			if err != nil {
				return hintItemKey(ctx, err, listKey, args[1])
			}
			forest = []*manager.ItemTree{node}
		} else {
			forest, err = mgr.GetListTree(ctx, listKey)
			if err != nil {
				return hintListKey(ctx, err, listKey)
			}
		}
		return emitResult(forest, func() string {
			if len(forest) == 0 {
				return "No items."
			}
			return ui.RenderListTree(listKey, forest, ui.ShouldUseEmoji())
		}, nil)
	},
}

var itemSubtasksCmd = &cobra.Command{
	Use:   "subtasks <list> <item>",
	Short: "List an item's direct subitems",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		items, err := mgr.GetSubtasks(ctx, args[0], args[1])
		if err != nil {
			return hintItemKey(ctx, err, args[0], args[1])
		}
		return emitResult(items, func() string {
			if len(items) == 0 {
				return "No subitems."
			}
			return renderItems(items)
		}, func() string {
			if len(items) == 0 {
				return "No subitems."
			}
			return renderItemsVertical(items)
		})
	},
}

var itemMoveCmd = &cobra.Command{
	Use:   "move <list> <item> <new-parent>",
	Short: "Convert an item into a subitem of another item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		item, err := mgr.MoveToSubitem(ctx, args[0], args[1], args[2])
		if err != nil {
			return hintItemKey(ctx, err, args[0], args[1])
		}
		return emitOK(item, "Moved %q under %q", item.ItemKey, args[2])
	},
}

var itemFindCmd = &cobra.Command{
	Use:   "find --property <key> --value <value> [list]",
	Short: "Find items by exact property value",
	Long: `Find items whose property equals the given value. With a list
argument the search is limited to that list, otherwise it spans every
visible list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		key, _ := cmd.Flags().GetString("property")
		value, _ := cmd.Flags().GetString("value")
		limit, _ := cmd.Flags().GetInt("limit")
		if key == "" {
			return fmt.Errorf("--property is required")
		}
		listKey := ""
		if len(args) == 1 {
			listKey = args[0]
		}
		items, err := mgr.FindItemsByProperty(ctx, listKey, key, value, limit)
		if err != nil {
			return hintListKey(ctx, err, listKey)
		}
		return emitResult(items, func() string {
			if len(items) == 0 {
				return "No matching items."
			}
			return renderItems(items)
		}, func() string {
			if len(items) == 0 {
				return "No matching items."
			}
			return renderItemsVertical(items)
		})
	},
}

var itemFindStatusCmd = &cobra.Command{
	Use:   "find-status <list> <status | subkey=status...>",
	Short: "Find items by status, or parents by subitem statuses",
	Long: `Two forms:

  todoit item find-status backend pending
      items of the list with the given status

  todoit item find-status backend build=completed test=pending
      parents whose subitems satisfy ALL the key=status conditions`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		listKey := args[0]
		limit, _ := cmd.Flags().GetInt("limit")

		if !strings.Contains(args[1], "=") {
			if len(args) > 2 {
				return fmt.Errorf("give exactly one status, or key=status conditions")
			}
			status := types.ItemStatus(args[1])
			if !status.IsValid() {
				return fmt.Errorf("invalid status %q", args[1])
			}
			items, err := mgr.FindItemsByStatus(ctx, listKey, status, limit)
			if err != nil {
				return hintListKey(ctx, err, listKey)
			}
			return emitResult(items, func() string {
				if len(items) == 0 {
					return "No matching items."
				}
				return renderItems(items)
			}, nil)
		}

		conditions := make(map[string]types.ItemStatus, len(args)-1)
		for _, arg := range args[1:] {
			k, v, ok := strings.Cut(arg, "=")
			status := types.ItemStatus(v)
			if !ok || k == "" || !status.IsValid() {
				return fmt.Errorf("invalid condition %q (want subkey=status)", arg)
			}
			conditions[k] = status
		}
		matches, err := mgr.FindSubitemsByStatus(ctx, listKey, conditions, limit)
		if err != nil {
			return hintListKey(ctx, err, listKey)
		}
		return emitResult(matches, func() string {
			if len(matches) == 0 {
				return "No matching items."
			}
			var b strings.Builder
			for i, match := range matches {
				if i > 0 {
					b.WriteString("\n")
				}
				b.WriteString(fmt.Sprintf("%s %s\n", renderStatus(match.Parent.Status), match.Parent.ItemKey))
				b.WriteString(renderItems(match.Subitems))
			}
			return b.String()
		}, nil)
	},
}

var itemStateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and prune completion states",
}

var itemStateListCmd = &cobra.Command{
	Use:   "list <list> <item>",
	Short: "Show an item's completion states",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		parent, _ := cmd.Flags().GetString("parent")
		item, err := mgr.GetItem(ctx, args[0], args[1], parent)
		if err != nil {
			return hintItemKey(ctx, err, args[0], args[1])
		}
		return emitResult(item.CompletionStates, func() string {
			if len(item.CompletionStates) == 0 {
				return "No completion states."
			}
			return fmtStates(item.CompletionStates)
		}, nil)
	},
}

var itemStateClearCmd = &cobra.Command{
	Use:   "clear <list> <item>",
	Short: "Remove every completion state from an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		parent, _ := cmd.Flags().GetString("parent")
		item, err := mgr.ClearCompletionStates(ctx, args[0], args[1], parent)
		if err != nil {
			return hintItemKey(ctx, err, args[0], args[1])
		}
		return emitOK(item, "Cleared states of %q", item.ItemKey)
	},
}

var itemStateRemoveCmd = &cobra.Command{
	Use:   "remove <list> <item> <key...>",
	Short: "Remove specific completion states",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		parent, _ := cmd.Flags().GetString("parent")
		item, err := mgr.RemoveCompletionStates(ctx, args[0], args[1], args[2:], parent)
		if err != nil {
			return hintItemKey(ctx, err, args[0], args[1])
		}
		return emitOK(item, "Removed %d state(s) from %q", len(args)-2, item.ItemKey)
	},
}

func init() {
	itemAddCmd.Flags().String("parent", "", "add as a subitem of this item")
	itemAddCmd.Flags().BoolP("interactive", "i", false, "fill in the item through a form")

	itemShowCmd.Flags().String("parent", "", "parent item key")
	itemShowCmd.Flags().Bool("render", false, "render the content as markdown")

	itemStatusCmd.Flags().String("parent", "", "parent item key")
	itemStatusCmd.Flags().StringArray("state", nil, "completion state as key=value (repeatable)")

	itemNextCmd.Flags().Bool("simple", false, "first pending item in list order")

	itemEditCmd.Flags().String("parent", "", "parent item key")

	itemDeleteCmd.Flags().String("parent", "", "parent item key")
	itemDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	itemFindCmd.Flags().String("property", "", "property key to match")
	itemFindCmd.Flags().String("value", "", "property value to match")
	itemFindCmd.Flags().Int("limit", 0, "maximum number of results (0 = all)")

	itemFindStatusCmd.Flags().Int("limit", 0, "maximum number of results (0 = all)")

	for _, c := range []*cobra.Command{itemStateListCmd, itemStateClearCmd, itemStateRemoveCmd} {
		c.Flags().String("parent", "", "parent item key")
	}
	itemStateCmd.AddCommand(itemStateListCmd, itemStateClearCmd, itemStateRemoveCmd)

	itemCmd.AddCommand(
		itemAddCmd, itemShowCmd, itemStatusCmd, itemNextCmd, itemEditCmd,
		itemDeleteCmd, itemTreeCmd, itemSubtasksCmd, itemMoveCmd,
		itemFindCmd, itemFindStatusCmd, itemStateCmd,
		newPropertyCommand(propertyScopeItem),
	)
	rootCmd.AddCommand(itemCmd)
}
