package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

// Verify txStore implements storage.Transaction at compile time
var _ storage.Transaction = (*txStore)(nil)

// txStore implements the storage.Transaction interface for SQLite.
// It wraps a dedicated database connection with an active transaction.
type txStore struct {
	conn   *sql.Conn // Dedicated connection for the transaction
	parent *Store    // Parent store for accessing shared state
}

const beginRetryMaxElapsed = 5 * time.Second

// isBusyError reports whether an error is SQLITE_BUSY or its lock
// variants, the only begin failures worth retrying.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}

// beginImmediateWithRetry starts an IMMEDIATE transaction, retrying with
// exponential backoff while the database is locked by another writer.
// Non-busy errors abort immediately.
func beginImmediateWithRetry(ctx context.Context, conn *sql.Conn) error {
	// BackOff implementations are stateful; always use a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = beginRetryMaxElapsed

	return backoff.Retry(func() error {
		_, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE")
		if err != nil && isBusyError(err) {
			return err // Retryable - backoff will retry
		}
		if err != nil {
			return backoff.Permanent(err) // Non-retryable - stop immediately
		}
		return nil
	}, backoff.WithContext(bo, ctx))
}

// RunInTransaction executes a function within a database transaction.
//
// The transaction uses BEGIN IMMEDIATE to acquire a write lock early,
// preventing deadlocks when multiple goroutines compete for the same lock.
//
// Transaction lifecycle:
//  1. Acquire dedicated connection from pool
//  2. Begin IMMEDIATE transaction with retry on SQLITE_BUSY
//  3. Execute user function with Transaction interface
//  4. On success: COMMIT
//  5. On error or panic: ROLLBACK
//
// Panic safety: If the callback panics, the transaction is rolled back
// and the panic is re-raised to the caller.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	// Acquire a dedicated connection for the transaction.
	// This ensures all operations in the transaction use the same connection.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for transaction: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := beginImmediateWithRetry(ctx, conn); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Track commit state for cleanup
	committed := false
	defer func() {
		if !committed {
			// Use background context to ensure rollback completes even if ctx is cancelled
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	// Handle panics: rollback and re-raise
	defer func() {
		if r := recover(); r != nil {
			// Rollback will happen via the committed=false check above
			panic(r) // Re-raise the panic
		}
	}()

	tx := &txStore{
		conn:   conn,
		parent: s,
	}

	// Execute user function
	if err := fn(tx); err != nil {
		return err // Rollback happens in defer
	}

	// Commit the transaction
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// List operations

func (t *txStore) CreateList(ctx context.Context, list *types.List) error {
	return insertList(ctx, t.conn, list)
}

func (t *txStore) GetListByID(ctx context.Context, id int64) (*types.List, error) {
	return getListByID(ctx, t.conn, id)
}

func (t *txStore) GetListByKey(ctx context.Context, key string) (*types.List, error) {
	return getListByKey(ctx, t.conn, key)
}

func (t *txStore) UpdateList(ctx context.Context, id int64, updates map[string]interface{}) error {
	return updateList(ctx, t.conn, id, updates)
}

func (t *txStore) DeleteList(ctx context.Context, id int64) error {
	return deleteList(ctx, t.conn, id)
}

// Item operations

func (t *txStore) CreateItem(ctx context.Context, item *types.Item) error {
	return insertItem(ctx, t.conn, item)
}

func (t *txStore) GetItemByID(ctx context.Context, id int64) (*types.Item, error) {
	return getItemByID(ctx, t.conn, id)
}

func (t *txStore) GetItemByKey(ctx context.Context, listID int64, key string) (*types.Item, error) {
	return getItemByKey(ctx, t.conn, listID, key)
}

func (t *txStore) GetItemByKeyAndParent(ctx context.Context, listID int64, key string, parentID *int64) (*types.Item, error) {
	return getItemByKeyAndParent(ctx, t.conn, listID, key, parentID)
}

func (t *txStore) UpdateItem(ctx context.Context, id int64, updates map[string]interface{}) error {
	return updateItem(ctx, t.conn, id, updates)
}

func (t *txStore) DeleteItem(ctx context.Context, id int64) error {
	return deleteItem(ctx, t.conn, id)
}

func (t *txStore) GetNextPosition(ctx context.Context, listID int64, parentID *int64) (int, error) {
	return getNextPosition(ctx, t.conn, listID, parentID)
}

func (t *txStore) GetItemChildren(ctx context.Context, id int64) ([]*types.Item, error) {
	return getItemChildren(ctx, t.conn, id)
}

func (t *txStore) GetChildrenStatusSummary(ctx context.Context, id int64) (types.ChildStatusSummary, error) {
	return getChildrenStatusSummary(ctx, t.conn, id)
}

func (t *txStore) GetItemDepth(ctx context.Context, id int64) (int, error) {
	return getItemDepth(ctx, t.conn, id)
}

func (t *txStore) GetListItems(ctx context.Context, listID int64, status *types.ItemStatus, limit int) ([]*types.Item, error) {
	return getListItems(ctx, t.conn, listID, status, limit)
}

// Property operations

func (t *txStore) SetListProperty(ctx context.Context, listID int64, key, value string) error {
	return setProperty(ctx, t.conn, "list_properties", "list_id", listID, key, value)
}

func (t *txStore) GetListProperties(ctx context.Context, listID int64) ([]*types.Property, error) {
	return getProperties(ctx, t.conn, "list_properties", "list_id", listID)
}

func (t *txStore) DeleteListProperty(ctx context.Context, listID int64, key string) error {
	return deleteProperty(ctx, t.conn, "list_properties", "list_id", listID, key)
}

func (t *txStore) SetItemProperty(ctx context.Context, itemID int64, key, value string) error {
	return setProperty(ctx, t.conn, "item_properties", "item_id", itemID, key, value)
}

func (t *txStore) DeleteItemProperty(ctx context.Context, itemID int64, key string) error {
	return deleteProperty(ctx, t.conn, "item_properties", "item_id", itemID, key)
}

func (t *txStore) GetItemProperties(ctx context.Context, itemID int64) ([]*types.Property, error) {
	return getProperties(ctx, t.conn, "item_properties", "item_id", itemID)
}

// Tag operations

func (t *txStore) CreateTag(ctx context.Context, tag *types.Tag) error {
	return insertTag(ctx, t.conn, tag)
}

func (t *txStore) GetTagByName(ctx context.Context, name string) (*types.Tag, error) {
	return getTagByName(ctx, t.conn, name)
}

func (t *txStore) GetAllTags(ctx context.Context) ([]*types.Tag, error) {
	return getAllTags(ctx, t.conn)
}

func (t *txStore) UpdateTagColor(ctx context.Context, id int64, color string) error {
	return updateTagColor(ctx, t.conn, id, color)
}

func (t *txStore) DeleteTag(ctx context.Context, id int64) error {
	return deleteTag(ctx, t.conn, id)
}

func (t *txStore) AssignTag(ctx context.Context, listID, tagID int64) error {
	return assignTag(ctx, t.conn, listID, tagID)
}

func (t *txStore) UnassignTag(ctx context.Context, listID, tagID int64) error {
	return unassignTag(ctx, t.conn, listID, tagID)
}

func (t *txStore) GetListTags(ctx context.Context, listID int64) ([]*types.Tag, error) {
	return getListTags(ctx, t.conn, listID)
}

// Dependency operations

func (t *txStore) CreateItemDependency(ctx context.Context, dep *types.ItemDependency) error {
	return insertItemDependency(ctx, t.conn, dep)
}

func (t *txStore) DeleteItemDependency(ctx context.Context, dependentID, requiredID int64) error {
	return deleteItemDependency(ctx, t.conn, dependentID, requiredID)
}

// History operations

func (t *txStore) RecordHistory(ctx context.Context, entry *types.HistoryEntry) error {
	return insertHistory(ctx, t.conn, entry)
}
