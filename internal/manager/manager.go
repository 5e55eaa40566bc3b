// Package manager implements the task engine façade. It composes the
// storage layer with the hierarchy, selection and dependency engines,
// applies the force-tags access scope, and records one history entry
// per successful mutation. External surfaces (CLI, HTTP) call only
// this package.
package manager

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

// Manager is the single public entry point of the engine. Safe for
// concurrent use; mutations serialize through the store's single
// writer. Every mutation runs in one transaction: access check,
// business rule, persistence, parent-chain sync, and the history
// entry commit or roll back together.
type Manager struct {
	store   storage.Storage
	scope   AccessScope
	actor   string
	session string
}

// Options configures a Manager
type Options struct {
	// Scope is the resolved force/filter tag configuration
	Scope AccessScope
	// Actor names who is operating; recorded in history user_context
	Actor string
}

// New constructs a Manager over a storage backend. A fresh session id
// joins the actor in every history entry recorded by this instance.
func New(store storage.Storage, opts Options) *Manager {
	actor := opts.Actor
	if actor == "" {
		actor = "unknown"
	}
	return &Manager{
		store:   store,
		scope:   opts.Scope,
		actor:   actor,
		session: uuid.NewString()[:8],
	}
}

// Scope returns the access scope the Manager was constructed with
func (m *Manager) Scope() AccessScope {
	return m.scope
}

func (m *Manager) userContext() string {
	return m.actor + ":" + m.session
}

// record appends the operation's single history entry within tx
func (m *Manager) record(ctx context.Context, tx storage.Transaction, entry *types.HistoryEntry) error {
	entry.UserContext = m.userContext()
	if err := tx.RecordHistory(ctx, entry); err != nil {
		return mapStorageError(err)
	}
	return nil
}

// requireListRead resolves a list for a read. Out-of-scope lists are
// reported as absent so force-tags callers cannot probe for keys.
func (m *Manager) requireListRead(ctx context.Context, key string) (*types.List, error) {
	list, err := m.store.GetListByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", key, mapStorageError(err))
	}
	if m.scope.Enforced() {
		tags, err := m.store.GetListTags(ctx, list.ID)
		if err != nil {
			return nil, mapStorageError(err)
		}
		if !m.scope.allows(tags) {
			return nil, fmt.Errorf("list %q: %w", key, ErrNotFound)
		}
	}
	return list, nil
}

// requireListWrite resolves a list for a mutation inside tx.
// Out-of-scope lists fail with ErrAccessDenied.
func (m *Manager) requireListWrite(ctx context.Context, tx storage.Transaction, key string) (*types.List, error) {
	list, err := tx.GetListByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", key, mapStorageError(err))
	}
	if m.scope.Enforced() {
		tags, err := tx.GetListTags(ctx, list.ID)
		if err != nil {
			return nil, mapStorageError(err)
		}
		if !m.scope.allows(tags) {
			return nil, fmt.Errorf("list %q: %w", key, ErrAccessDenied)
		}
	}
	return list, nil
}

// listAllowed reports whether a list id passes the forced scope. Used
// by cross-list reads that cannot go through requireListRead.
func (m *Manager) listAllowed(ctx context.Context, listID int64) (bool, error) {
	if !m.scope.Enforced() {
		return true, nil
	}
	tags, err := m.store.GetListTags(ctx, listID)
	if err != nil {
		return false, mapStorageError(err)
	}
	return m.scope.allows(tags), nil
}
