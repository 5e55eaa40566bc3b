package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hipotures/todoit/internal/types"
)

type propertyScope int

const (
	propertyScopeList propertyScope = iota
	propertyScopeItem
)

// newPropertyCommand builds the `property set|get|list|delete` group
// for either lists or items. Item-scoped commands take an extra item
// key argument and a --parent flag for disambiguating duplicate keys.
func newPropertyCommand(scope propertyScope) *cobra.Command {
	var parent string

	owner := "<list>"
	if scope == propertyScopeItem {
		owner = "<list> <item>"
	}
	// fixed leading args before the property key/value
	lead := 1
	if scope == propertyScopeItem {
		lead = 2
	}

	propCmd := &cobra.Command{
		Use:   "property",
		Short: "Manage key-value properties",
	}

	setCmd := &cobra.Command{
		Use:   fmt.Sprintf("set %s <key> <value>", owner),
		Short: "Set a property (inserts or overwrites)",
		Args:  cobra.ExactArgs(lead + 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, value := args[lead], args[lead+1]
			var err error
			if scope == propertyScopeItem {
				err = mgr.SetItemProperty(ctx, args[0], args[1], key, value, parent)
				err = hintItemKey(ctx, err, args[0], args[1])
			} else {
				err = mgr.SetListProperty(ctx, args[0], key, value)
				err = hintListKey(ctx, err, args[0])
			}
			if err != nil {
				return err
			}
			return emitOK(map[string]string{"key": key, "value": value}, "Set %s=%s", key, value)
		},
	}

	getCmd := &cobra.Command{
		Use:   fmt.Sprintf("get %s <key>", owner),
		Short: "Print a property value",
		Args:  cobra.ExactArgs(lead + 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key := args[lead]
			var (
				value string
				err   error
			)
			if scope == propertyScopeItem {
				value, err = mgr.GetItemProperty(ctx, args[0], args[1], key, parent)
				err = hintItemKey(ctx, err, args[0], args[1])
			} else {
				value, err = mgr.GetListProperty(ctx, args[0], key)
				err = hintListKey(ctx, err, args[0])
			}
			if err != nil {
				return err
			}
			return emitResult(map[string]string{"key": key, "value": value}, func() string {
				return value
			}, nil)
		},
	}

	listPropsCmd := &cobra.Command{
		Use:   "list " + owner,
		Short: "List all properties",
		Args:  cobra.ExactArgs(lead),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				props []*types.Property
				err   error
			)
			if scope == propertyScopeItem {
				props, err = mgr.GetItemProperties(ctx, args[0], args[1], parent)
				err = hintItemKey(ctx, err, args[0], args[1])
			} else {
				props, err = mgr.GetListProperties(ctx, args[0])
				err = hintListKey(ctx, err, args[0])
			}
			if err != nil {
				return err
			}
			return emitResult(props, func() string {
				if len(props) == 0 {
					return "No properties."
				}
				return renderProperties(props)
			}, nil)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   fmt.Sprintf("delete %s <key>", owner),
		Short: "Delete a property",
		Args:  cobra.ExactArgs(lead + 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key := args[lead]
			var err error
			if scope == propertyScopeItem {
				err = mgr.DeleteItemProperty(ctx, args[0], args[1], key, parent)
				err = hintItemKey(ctx, err, args[0], args[1])
			} else {
				err = mgr.DeleteListProperty(ctx, args[0], key)
				err = hintListKey(ctx, err, args[0])
			}
			if err != nil {
				return err
			}
			return emitOK(map[string]string{"deleted": key}, "Deleted property %q", key)
		},
	}

	if scope == propertyScopeItem {
		for _, c := range []*cobra.Command{setCmd, getCmd, listPropsCmd, deleteCmd} {
			c.Flags().StringVar(&parent, "parent", "", "parent item key (when subitem keys repeat across parents)")
		}
	}

	propCmd.AddCommand(setCmd, getCmd, listPropsCmd, deleteCmd)
	return propCmd
}
