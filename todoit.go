// Package todoit provides a minimal public API for embedding the task
// engine in other Go programs.
//
// Most integrations should drive the todoit binary or its HTTP API.
// This package exports only the types and constructors needed to use
// the engine in-process: open a store, build a Manager, and call the
// façade directly.
package todoit

import (
	"context"

	"github.com/hipotures/todoit/internal/config"
	"github.com/hipotures/todoit/internal/manager"
	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/storage/sqlite"
	"github.com/hipotures/todoit/internal/types"
)

// Storage is the interface the engine persists through
type Storage = storage.Storage

// Transaction groups multiple storage operations atomically. Use
// Storage.RunInTransaction to obtain one.
type Transaction = storage.Transaction

// Manager is the engine façade; all operations go through it
type Manager = manager.Manager

// ManagerOptions configures NewManager
type ManagerOptions = manager.Options

// AccessScope restricts a Manager to tagged lists
type AccessScope = manager.AccessScope

// OpenStorage opens (creating when missing) a SQLite database at
// dbPath. Use ":memory:" for an in-process throwaway database.
func OpenStorage(ctx context.Context, dbPath string) (*sqlite.Store, error) {
	return sqlite.New(ctx, dbPath)
}

// NewManager builds a Manager over a storage backend
func NewManager(store Storage, opts ManagerOptions) *Manager {
	return manager.New(store, opts)
}

// NewAccessScope builds the scope from force and filter tag lists.
// Force tags win: when any are present the filter tags are ignored.
func NewAccessScope(forceTags, filterTags []string) AccessScope {
	return manager.NewAccessScope(forceTags, filterTags)
}

// FindDatabasePath locates the nearest .todoit/todoit.db walking up
// from the working directory, falling back to .todoit/todoit.db in
// the working directory itself.
func FindDatabasePath() string {
	return config.DefaultDBPath()
}

// Core types from internal/types
type (
	List               = types.List
	ListStatus         = types.ListStatus
	ListType           = types.ListType
	Item               = types.Item
	ItemStatus         = types.ItemStatus
	Tag                = types.Tag
	Property           = types.Property
	ItemDependency     = types.ItemDependency
	DependencyType     = types.DependencyType
	HistoryEntry       = types.HistoryEntry
	HistoryAction      = types.HistoryAction
	ListProgress       = types.ListProgress
	ChildStatusSummary = types.ChildStatusSummary
	SubitemMatch       = types.SubitemMatch
)

// Request and result shapes of the façade
type (
	CreateListOptions = manager.CreateListOptions
	UpdateListRequest = manager.UpdateListRequest
	AddItemOptions    = manager.AddItemOptions
	StatusUpdate      = manager.StatusUpdate
	ItemRef           = manager.ItemRef
	ItemTree          = manager.ItemTree
	Readiness         = manager.Readiness
	DependencyEdge    = manager.DependencyEdge
	FailedItem        = manager.FailedItem
)

// Item status constants
const (
	StatusPending    = types.StatusPending
	StatusInProgress = types.StatusInProgress
	StatusCompleted  = types.StatusCompleted
	StatusFailed     = types.StatusFailed
)

// List status constants
const (
	ListActive   = types.ListActive
	ListArchived = types.ListArchived
)

// Dependency type constants
const (
	DepBlocks   = types.DepBlocks
	DepRequires = types.DepRequires
	DepRelated  = types.DepRelated
)

// Error kinds returned by the façade; test with errors.Is
var (
	ErrNotFound             = manager.ErrNotFound
	ErrDuplicateKey         = manager.ErrDuplicateKey
	ErrInvalidArgument      = manager.ErrInvalidArgument
	ErrAccessDenied         = manager.ErrAccessDenied
	ErrHasChildren          = manager.ErrHasChildren
	ErrCannotRemoveForceTag = manager.ErrCannotRemoveForceTag
	ErrWouldCreateCycle     = manager.ErrWouldCreateCycle
	ErrTagLimit             = manager.ErrTagLimit
	ErrStorageFailure       = manager.ErrStorageFailure
)
