package main

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/hipotures/todoit/internal/types"
	"github.com/hipotures/todoit/internal/ui"
)

var reportsCmd = &cobra.Command{
	Use:     "reports",
	Short:   "Failure and change reports",
	GroupID: "data",
}

// parseSince accepts a YYYY-MM-DD date or a natural language phrase
// like "yesterday" or "3 days ago".
func parseSince(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return &t, nil
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(s, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", s, err)
	}
	if r == nil {
		return nil, fmt.Errorf("cannot understand time %q (try 'yesterday', '3 days ago' or 2006-01-02)", s)
	}
	return &r.Time, nil
}

var reportsErrorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Show failed items across lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		listKey, _ := cmd.Flags().GetString("list")
		sinceArg, _ := cmd.Flags().GetString("since")

		since, err := parseSince(sinceArg)
		if err != nil {
			return err
		}
		failed, err := mgr.GetFailedItems(ctx, listKey, since)
		if err != nil {
			return hintListKey(ctx, err, listKey)
		}
		return emitResult(failed, func() string {
			if len(failed) == 0 {
				return "No failed items."
			}
			rows := make([][]string, 0, len(failed))
			for _, f := range failed {
				rows = append(rows, []string{
					f.List.ListKey,
					f.Item.ItemKey,
					f.Item.Content,
					fmtTime(f.Item.UpdatedAt),
				})
			}
			return ui.RenderTable([]string{"List", "Item", "Content", "Failed at"}, rows)
		}, nil)
	},
}

var reportsHistoryCmd = &cobra.Command{
	Use:   "history [list [item]]",
	Short: "Show the change history",
	Long: `Show recorded changes, newest first. Without arguments the history
spans every visible list; a list narrows it, a list and item narrow it
to one item.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")
		parent, _ := cmd.Flags().GetString("parent")

		var (
			entries []*types.HistoryEntry
			err     error
		)
		switch len(args) {
		case 2:
			entries, err = mgr.GetItemHistory(ctx, args[0], args[1], parent, limit)
			err = hintItemKey(ctx, err, args[0], args[1])
		case 1:
			entries, err = mgr.GetListHistory(ctx, args[0], limit)
			err = hintListKey(ctx, err, args[0])
		default:
			entries, err = mgr.GetRecentHistory(ctx, limit)
		}
		if err != nil {
			return err
		}
		return emitResult(entries, func() string {
			if len(entries) == 0 {
				return "No history."
			}
			return renderHistory(entries)
		}, nil)
	},
}

func init() {
	reportsErrorsCmd.Flags().String("list", "", "restrict to one list")
	reportsErrorsCmd.Flags().String("since", "", "only failures updated since (natural language or YYYY-MM-DD)")

	reportsHistoryCmd.Flags().Int("limit", 50, "maximum number of entries (0 = all)")
	reportsHistoryCmd.Flags().String("parent", "", "parent item key")

	reportsCmd.AddCommand(reportsErrorsCmd, reportsHistoryCmd)
	rootCmd.AddCommand(reportsCmd)
}
