package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hipotures/todoit/internal/manager"
	"github.com/hipotures/todoit/internal/types"
	"github.com/hipotures/todoit/internal/ui"
)

var depCmd = &cobra.Command{
	Use:     "dep",
	Short:   "Cross-list dependencies between items",
	GroupID: "relations",
}

// parseRef splits a list:item reference
func parseRef(ref string) (manager.ItemRef, error) {
	listKey, itemKey, ok := strings.Cut(ref, ":")
	if !ok || listKey == "" || itemKey == "" {
		return manager.ItemRef{}, fmt.Errorf("invalid reference %q (want list:item)", ref)
	}
	return manager.ItemRef{ListKey: listKey, ItemKey: itemKey}, nil
}

var depAddCmd = &cobra.Command{
	Use:   "add <dependent> <required>",
	Short: "Make one item depend on another",
	Long: `Make <dependent> depend on <required>; both are list:item references.

Types 'requires' (default) and 'blocks' keep the dependent out of 'item
next' until the required item completes. 'related' is informational.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		depType, _ := cmd.Flags().GetString("type")

		dependent, err := parseRef(args[0])
		if err != nil {
			return err
		}
		required, err := parseRef(args[1])
		if err != nil {
			return err
		}
		dep, err := mgr.AddItemDependency(ctx, dependent, required, types.DependencyType(depType), nil)
		if err != nil {
			return hintListKey(ctx, err, dependent.ListKey)
		}
		return emitOK(dep, "%s now %s %s", dependent, dep.Type, required)
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <dependent> <required>",
	Short: "Remove a dependency edge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dependent, err := parseRef(args[0])
		if err != nil {
			return err
		}
		required, err := parseRef(args[1])
		if err != nil {
			return err
		}
		if err := mgr.RemoveItemDependency(ctx, dependent, required); err != nil {
			return hintListKey(ctx, err, dependent.ListKey)
		}
		return emitOK(map[string]string{"dependent": dependent.String(), "required": required.String()},
			"Removed %s -> %s", dependent, required)
	},
}

// depDetail is the `dep show` payload
type depDetail struct {
	Edges    []manager.DependencyEdge `json:"edges"`
	Blockers []*types.Item            `json:"blockers,omitempty"`
	CanStart *manager.Readiness       `json:"can_start"`
}

var depShowCmd = &cobra.Command{
	Use:   "show <list:item>",
	Short: "Show every dependency touching an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ref, err := parseRef(args[0])
		if err != nil {
			return err
		}
		edges, err := mgr.GetItemEdges(ctx, ref.ListKey, ref.ItemKey)
		if err != nil {
			return hintItemKey(ctx, err, ref.ListKey, ref.ItemKey)
		}
		blockers, err := mgr.GetItemBlockers(ctx, ref.ListKey, ref.ItemKey)
		if err != nil {
			return err
		}
		readiness, err := mgr.CanStartItem(ctx, ref.ListKey, ref.ItemKey)
		if err != nil {
			return err
		}
		detail := &depDetail{Edges: edges, Blockers: blockers, CanStart: readiness}
		return emitResult(detail, func() string {
			var b strings.Builder
			if len(edges) == 0 {
				b.WriteString("No dependencies.\n")
			} else {
				b.WriteString(renderEdges(edges) + "\n")
			}
			if readiness.Ready {
				b.WriteString(ui.RenderPass("Ready to start."))
			} else {
				b.WriteString(ui.RenderWarn("Not ready: " + readiness.Reason))
			}
			return b.String()
		}, nil)
	},
}

var depGraphCmd = &cobra.Command{
	Use:   "graph <list>",
	Short: "Show the dependency edges of a list's items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		edges, err := mgr.GetListDependencyEdges(ctx, args[0])
		if err != nil {
			return hintListKey(ctx, err, args[0])
		}
		return emitResult(edges, func() string {
			if len(edges) == 0 {
				return "No dependencies."
			}
			var b strings.Builder
			for _, e := range edges {
				b.WriteString(fmt.Sprintf("%s %s --%s--> %s %s\n",
					renderStatus(e.Dependent.Status), e.DependentRef,
					e.Type,
					e.RequiredRef, renderStatus(e.Required.Status)))
			}
			return strings.TrimRight(b.String(), "\n")
		}, nil)
	},
}

func init() {
	depAddCmd.Flags().String("type", string(types.DepRequires), "dependency type: requires, blocks or related")

	depCmd.AddCommand(depAddCmd, depRemoveCmd, depShowCmd, depGraphCmd)
	rootCmd.AddCommand(depCmd)
}
