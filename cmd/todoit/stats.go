package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hipotures/todoit/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Progress statistics",
	GroupID: "data",
}

var statsProgressCmd = &cobra.Command{
	Use:   "progress [list]",
	Short: "Show completion progress per list",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 1 {
			p, err := mgr.GetProgress(ctx, args[0])
			if err != nil {
				return hintListKey(ctx, err, args[0])
			}
			return emitResult(p, func() string {
				var b strings.Builder
				b.WriteString(ui.RenderProgressBar(p, 40) + "\n")
				b.WriteString(ui.RenderProgressSummary(p, ui.ShouldUseEmoji()))
				return b.String()
			}, nil)
		}

		includeArchived, _ := cmd.Flags().GetBool("include-archived")
		all, err := mgr.GetAllProgress(ctx, includeArchived)
		if err != nil {
			return err
		}
		return emitResult(all, func() string {
			if len(all) == 0 {
				return "No lists found."
			}
			return renderProgressTable(all)
		}, nil)
	},
}

func init() {
	statsProgressCmd.Flags().Bool("include-archived", false, "include archived lists")

	statsCmd.AddCommand(statsProgressCmd)
	rootCmd.AddCommand(statsCmd)
}
