// Package storage defines the interface for task storage backends.
package storage

import (
	"context"
	"database/sql"

	"github.com/hipotures/todoit/internal/types"
)

// Transaction provides atomic multi-operation support within a single database transaction.
//
// The Transaction interface exposes a subset of Storage methods that execute within
// a single database transaction. This enables atomic workflows where multiple operations
// must either all succeed or all fail (e.g., creating an item, syncing its parent chain,
// and recording the history entry).
//
// # Transaction Semantics
//
//   - All operations within the transaction share the same database connection
//   - Changes are not visible to other connections until commit
//   - If any operation returns an error, the transaction is rolled back
//   - If the callback function panics, the transaction is rolled back
//   - On successful return from the callback, the transaction is committed
//
// # SQLite Specifics
//
//   - Uses BEGIN IMMEDIATE mode to acquire write lock early
//   - This prevents deadlocks when multiple operations compete for the same lock
//   - IMMEDIATE mode serializes concurrent transactions properly
//
// # Example Usage
//
//	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
//	    if err := tx.CreateItem(ctx, item); err != nil {
//	        return err // Triggers rollback
//	    }
//	    if err := tx.RecordHistory(ctx, entry); err != nil {
//	        return err // Triggers rollback
//	    }
//	    return nil // Triggers commit
//	})
type Transaction interface {
	// List operations
	CreateList(ctx context.Context, list *types.List) error
	GetListByID(ctx context.Context, id int64) (*types.List, error)
	GetListByKey(ctx context.Context, key string) (*types.List, error)
	UpdateList(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteList(ctx context.Context, id int64) error

	// Item operations (reads included for read-your-writes within the transaction)
	CreateItem(ctx context.Context, item *types.Item) error
	GetItemByID(ctx context.Context, id int64) (*types.Item, error)
	GetItemByKey(ctx context.Context, listID int64, key string) (*types.Item, error)
	GetItemByKeyAndParent(ctx context.Context, listID int64, key string, parentID *int64) (*types.Item, error)
	UpdateItem(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteItem(ctx context.Context, id int64) error
	GetNextPosition(ctx context.Context, listID int64, parentID *int64) (int, error)
	GetItemChildren(ctx context.Context, id int64) ([]*types.Item, error)
	GetChildrenStatusSummary(ctx context.Context, id int64) (types.ChildStatusSummary, error)
	GetItemDepth(ctx context.Context, id int64) (int, error)
	GetListItems(ctx context.Context, listID int64, status *types.ItemStatus, limit int) ([]*types.Item, error)

	// Property operations
	SetListProperty(ctx context.Context, listID int64, key, value string) error
	GetListProperties(ctx context.Context, listID int64) ([]*types.Property, error)
	DeleteListProperty(ctx context.Context, listID int64, key string) error
	SetItemProperty(ctx context.Context, itemID int64, key, value string) error
	DeleteItemProperty(ctx context.Context, itemID int64, key string) error
	GetItemProperties(ctx context.Context, itemID int64) ([]*types.Property, error)

	// Tag operations
	CreateTag(ctx context.Context, tag *types.Tag) error
	GetTagByName(ctx context.Context, name string) (*types.Tag, error)
	GetAllTags(ctx context.Context) ([]*types.Tag, error)
	UpdateTagColor(ctx context.Context, id int64, color string) error
	DeleteTag(ctx context.Context, id int64) error
	AssignTag(ctx context.Context, listID, tagID int64) error
	UnassignTag(ctx context.Context, listID, tagID int64) error
	GetListTags(ctx context.Context, listID int64) ([]*types.Tag, error)

	// Dependency operations
	CreateItemDependency(ctx context.Context, dep *types.ItemDependency) error
	DeleteItemDependency(ctx context.Context, dependentID, requiredID int64) error

	// History operations
	RecordHistory(ctx context.Context, entry *types.HistoryEntry) error
}

// Storage defines the interface for task storage backends
type Storage interface {
	// Lists
	CreateList(ctx context.Context, list *types.List) error
	GetListByID(ctx context.Context, id int64) (*types.List, error)
	GetListByKey(ctx context.Context, key string) (*types.List, error)
	ListAll(ctx context.Context, includeArchived bool, limit int) ([]*types.List, error)
	UpdateList(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteList(ctx context.Context, id int64) error

	// Items
	CreateItem(ctx context.Context, item *types.Item) error
	GetItemByID(ctx context.Context, id int64) (*types.Item, error)
	GetItemByKey(ctx context.Context, listID int64, key string) (*types.Item, error)
	GetItemByKeyAndParent(ctx context.Context, listID int64, key string, parentID *int64) (*types.Item, error)
	GetListItems(ctx context.Context, listID int64, status *types.ItemStatus, limit int) ([]*types.Item, error)
	UpdateItem(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteItem(ctx context.Context, id int64) error
	GetNextPosition(ctx context.Context, listID int64, parentID *int64) (int, error)
	GetItemChildren(ctx context.Context, id int64) ([]*types.Item, error)
	GetChildrenStatusSummary(ctx context.Context, id int64) (types.ChildStatusSummary, error)
	HasPendingChildren(ctx context.Context, id int64) (bool, error)
	GetRootItems(ctx context.Context, listID int64) ([]*types.Item, error)
	GetItemDepth(ctx context.Context, id int64) (int, error)
	GetItemPath(ctx context.Context, id int64) ([]*types.Item, error)
	FindItemsByStatus(ctx context.Context, listID int64, status types.ItemStatus, limit int) ([]*types.Item, error)

	// Properties
	SetListProperty(ctx context.Context, listID int64, key, value string) error
	GetListProperty(ctx context.Context, listID int64, key string) (string, error)
	GetListProperties(ctx context.Context, listID int64) ([]*types.Property, error)
	DeleteListProperty(ctx context.Context, listID int64, key string) error
	SetItemProperty(ctx context.Context, itemID int64, key, value string) error
	GetItemProperty(ctx context.Context, itemID int64, key string) (string, error)
	GetItemProperties(ctx context.Context, itemID int64) ([]*types.Property, error)
	DeleteItemProperty(ctx context.Context, itemID int64, key string) error
	FindItemsByProperty(ctx context.Context, listID *int64, key, value string, limit int) ([]*types.Item, error)

	// Tags
	CreateTag(ctx context.Context, tag *types.Tag) error
	GetTagByName(ctx context.Context, name string) (*types.Tag, error)
	GetAllTags(ctx context.Context) ([]*types.Tag, error)
	UpdateTagColor(ctx context.Context, id int64, color string) error
	DeleteTag(ctx context.Context, id int64) error
	AssignTag(ctx context.Context, listID, tagID int64) error
	UnassignTag(ctx context.Context, listID, tagID int64) error
	GetListTags(ctx context.Context, listID int64) ([]*types.Tag, error)
	GetListsByTagsAny(ctx context.Context, names []string) ([]*types.List, error)
	GetListsByTagsAll(ctx context.Context, names []string) ([]*types.List, error)

	// Dependencies
	CreateItemDependency(ctx context.Context, dep *types.ItemDependency) error
	DeleteItemDependency(ctx context.Context, dependentID, requiredID int64) error
	GetItemDependencies(ctx context.Context, itemID int64) ([]*types.ItemDependency, error)
	GetItemBlockers(ctx context.Context, itemID int64) ([]*types.Item, error)
	IsItemBlocked(ctx context.Context, itemID int64) (bool, error)
	ListDependenciesForList(ctx context.Context, listID int64) ([]*types.ItemDependency, error)

	// History
	RecordHistory(ctx context.Context, entry *types.HistoryEntry) error
	GetItemHistory(ctx context.Context, itemID int64, limit int) ([]*types.HistoryEntry, error)
	GetListHistory(ctx context.Context, listID int64, limit int) ([]*types.HistoryEntry, error)
	GetRecentHistory(ctx context.Context, limit int) ([]*types.HistoryEntry, error)

	// Aggregates
	GetListProgress(ctx context.Context, listID int64) (*types.ListProgress, error)

	// Metadata (for internal state like the last app version that opened the file)
	SetMetadata(ctx context.Context, key, value string) error
	GetMetadata(ctx context.Context, key string) (string, error)

	// Transactions
	//
	// RunInTransaction executes a function within a database transaction.
	// The Transaction interface provides atomic multi-operation support.
	//
	// Transaction behavior:
	//   - If fn returns nil, the transaction is committed
	//   - If fn returns an error, the transaction is rolled back
	//   - If fn panics, the transaction is rolled back and the panic is re-raised
	//   - Uses BEGIN IMMEDIATE for SQLite to acquire write lock early
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error

	// Lifecycle
	Close() error

	// Database path (for diagnostics)
	Path() string

	// UnderlyingDB returns the underlying *sql.DB connection.
	// Provided for the schema command and tests that inspect tables directly.
	// WARNING: Direct database access bypasses the storage layer. Use with caution.
	UnderlyingDB() *sql.DB
}

// Config holds database configuration
type Config struct {
	Path string // database file path, or :memory: for tests
}
