package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hipotures/todoit/internal/manager"
	"github.com/hipotures/todoit/internal/utils"
)

// hintListKey decorates a not-found error with the nearest existing
// list key. Suggestions come from ListAll, so force-tag filtering
// applies and hidden lists are never revealed.
func hintListKey(ctx context.Context, err error, key string) error {
	if err == nil || !errors.Is(err, manager.ErrNotFound) {
		return err
	}
	lists, lerr := mgr.ListAll(ctx, true, 0)
	if lerr != nil || len(lists) == 0 {
		return err
	}
	keys := make([]string, 0, len(lists))
	for _, l := range lists {
		keys = append(keys, l.ListKey)
	}
	if match, ok := utils.ClosestMatch(key, keys, 2); ok && match != key {
		return fmt.Errorf("%w (did you mean %q?)", err, match)
	}
	return err
}

// hintItemKey does the same for item keys within one list
func hintItemKey(ctx context.Context, err error, listKey, itemKey string) error {
	if err == nil || !errors.Is(err, manager.ErrNotFound) {
		return err
	}
	items, lerr := mgr.GetListItems(ctx, listKey, nil, 0)
	if lerr != nil || len(items) == 0 {
		return hintListKey(ctx, err, listKey)
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.ItemKey)
	}
	if match, ok := utils.ClosestMatch(itemKey, keys, 2); ok && match != itemKey {
		return fmt.Errorf("%w (did you mean %q?)", err, match)
	}
	return err
}
