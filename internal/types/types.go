// Package types defines core data structures for the todoit task engine.
package types

import (
	"fmt"
	"time"
)

// ItemStatus represents the workflow state of an item
type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusInProgress ItemStatus = "in_progress"
	StatusCompleted  ItemStatus = "completed"
	StatusFailed     ItemStatus = "failed"
)

// IsValid checks if the status is one of the recognized values
func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true for states that end an item's lifecycle
func (s ItemStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// AllItemStatuses returns every recognized item status in workflow order
func AllItemStatuses() []ItemStatus {
	return []ItemStatus{StatusPending, StatusInProgress, StatusCompleted, StatusFailed}
}

// ListStatus represents the lifecycle state of a list
type ListStatus string

const (
	ListActive   ListStatus = "active"
	ListArchived ListStatus = "archived"
)

// IsValid checks if the list status is recognized
func (s ListStatus) IsValid() bool {
	return s == ListActive || s == ListArchived
}

// ListType classifies how a list orders its work
type ListType string

// ListSequential is the only list type currently recognized. The column
// exists so future scheduling modes don't need a schema change.
const ListSequential ListType = "sequential"

// IsValid checks if the list type is recognized
func (t ListType) IsValid() bool {
	return t == ListSequential
}

// DependencyType classifies an edge between two items
type DependencyType string

const (
	// DepBlocks and DepRequires both prevent the dependent item from
	// starting or completing until the required item is completed.
	DepBlocks   DependencyType = "blocks"
	DepRequires DependencyType = "requires"
	// DepRelated is informational only; it never blocks.
	DepRelated DependencyType = "related"
)

// IsValid checks if the dependency type is recognized
func (t DependencyType) IsValid() bool {
	switch t {
	case DepBlocks, DepRequires, DepRelated:
		return true
	}
	return false
}

// IsBlocking returns true for edge types that participate in blocker queries
func (t DependencyType) IsBlocking() bool {
	return t == DepBlocks || t == DepRequires
}

// List is a named collection of items forming the top-level namespace
type List struct {
	ID          int64          `json:"id"`
	ListKey     string         `json:"list_key"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	ListType    ListType       `json:"list_type"`
	Status      ListStatus     `json:"status"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Validate checks the list's field values
func (l *List) Validate() error {
	if err := ValidateListKey(l.ListKey); err != nil {
		return err
	}
	if l.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(l.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(l.Title))
	}
	if !l.ListType.IsValid() {
		return fmt.Errorf("invalid list type: %s", l.ListType)
	}
	if !l.Status.IsValid() {
		return fmt.Errorf("invalid list status: %s", l.Status)
	}
	return nil
}

// Item is a unit of work within a list. Items with ParentItemID set are
// subitems; their key is unique only within the parent's scope.
type Item struct {
	ID               int64          `json:"id"`
	ListID           int64          `json:"list_id"`
	ItemKey          string         `json:"item_key"`
	Content          string         `json:"content"`
	Position         int            `json:"position"`
	Status           ItemStatus     `json:"status"`
	CompletionStates map[string]any `json:"completion_states,omitempty"`
	ParentItemID     *int64         `json:"parent_item_id,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Validate checks the item's field values
func (i *Item) Validate() error {
	if err := ValidateItemKey(i.ItemKey); err != nil {
		return err
	}
	if i.Content == "" {
		return fmt.Errorf("content is required")
	}
	if len(i.Content) > MaxContentLength {
		return fmt.Errorf("content must be %d characters or less (got %d)", MaxContentLength, len(i.Content))
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", i.Status)
	}
	if i.Position < 1 {
		return fmt.Errorf("position must be 1-based (got %d)", i.Position)
	}
	if err := ValidateCompletionStates(i.CompletionStates); err != nil {
		return err
	}
	return nil
}

// IsRoot returns true for items without a parent
func (i *Item) IsRoot() bool {
	return i.ParentItemID == nil
}

// Property is a key-value pair attached to a list or an item
type Property struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"-"`
	Key       string    `json:"property_key"`
	Value     string    `json:"property_value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag labels lists. Names are normalized to lower case; colors are drawn
// positionally from a fixed 12-entry palette.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// TagPalette is the fixed color cycle for tags, in assignment order.
// Tag count is capped at the palette size.
var TagPalette = []string{
	"red", "green", "blue", "yellow", "magenta", "cyan",
	"orange", "purple", "pink", "teal", "lime", "gray",
}

// MaxTags is the global cap on distinct tags
const MaxTags = 12

// IsPaletteColor reports whether color is one of the palette entries
func IsPaletteColor(color string) bool {
	for _, c := range TagPalette {
		if c == color {
			return true
		}
	}
	return false
}

// ItemDependency is a directed edge dependent --(type)--> required
type ItemDependency struct {
	ID              int64          `json:"id"`
	DependentItemID int64          `json:"dependent_item_id"`
	RequiredItemID  int64          `json:"required_item_id"`
	Type            DependencyType `json:"dependency_type"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// HistoryAction identifies what a history entry records
type HistoryAction string

const (
	ActionListCreated     HistoryAction = "list_created"
	ActionListUpdated     HistoryAction = "list_updated"
	ActionListArchived    HistoryAction = "list_archived"
	ActionListUnarchived  HistoryAction = "list_unarchived"
	ActionListDeleted     HistoryAction = "list_deleted"
	ActionListLinked      HistoryAction = "list_linked"
	ActionItemCreated     HistoryAction = "item_created"
	ActionItemUpdated     HistoryAction = "item_updated"
	ActionStatusChanged   HistoryAction = "status_changed"
	ActionItemMoved       HistoryAction = "item_moved"
	ActionItemDeleted     HistoryAction = "item_deleted"
	ActionStatesCleared   HistoryAction = "states_cleared"
	ActionPropertySet     HistoryAction = "property_set"
	ActionPropertyRemoved HistoryAction = "property_removed"
	ActionTagCreated      HistoryAction = "tag_created"
	ActionTagDeleted      HistoryAction = "tag_deleted"
	ActionTagAdded        HistoryAction = "tag_added"
	ActionTagRemoved      HistoryAction = "tag_removed"
	ActionDepAdded        HistoryAction = "dependency_added"
	ActionDepRemoved      HistoryAction = "dependency_removed"
)

// HistoryEntry is one append-only record of a mutation. Entries are never
// updated or deleted while their subject exists.
type HistoryEntry struct {
	ID          int64          `json:"id"`
	ItemID      *int64         `json:"item_id,omitempty"`
	ListID      *int64         `json:"list_id,omitempty"`
	Action      HistoryAction  `json:"action"`
	OldValue    map[string]any `json:"old_value,omitempty"`
	NewValue    map[string]any `json:"new_value,omitempty"`
	UserContext string         `json:"user_context,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// ChildStatusSummary aggregates the statuses of an item's direct children
type ChildStatusSummary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// Derive computes the parent's status from the child multiset:
// any failed child fails the parent; otherwise all-pending stays pending,
// all-completed completes, and any mix is in_progress.
func (s ChildStatusSummary) Derive() ItemStatus {
	switch {
	case s.Failed > 0:
		return StatusFailed
	case s.Pending == s.Total:
		return StatusPending
	case s.Completed == s.Total:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// ListProgress summarizes completion across a whole list
type ListProgress struct {
	ListKey       string  `json:"list_key"`
	Total         int     `json:"total"`
	Pending       int     `json:"pending"`
	InProgress    int     `json:"in_progress"`
	Completed     int     `json:"completed"`
	Failed        int     `json:"failed"`
	Blocked       int     `json:"blocked"`
	PercentDone   float64 `json:"percent_done"`
	PercentFailed float64 `json:"percent_failed"`
}

// SubitemMatch groups a parent with the subitems that satisfied a
// find-by-status query
type SubitemMatch struct {
	Parent   *Item   `json:"parent"`
	Subitems []*Item `json:"subitems"`
}
