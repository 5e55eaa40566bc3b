package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/hipotures/todoit/internal/storage"
)

// Error kinds returned by the façade. Each observable failure maps to
// exactly one of these; callers branch with errors.Is and translate to
// exit codes or HTTP statuses.
var (
	// ErrNotFound means a list, item, tag or property addressed by key
	// does not exist in the caller's addressable scope.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey means a list key or a (list, parent, item key)
	// combination already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidArgument means input failed shape, length or character
	// class validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAccessDenied means the access scope rejected a mutation under
	// force-tags.
	ErrAccessDenied = errors.New("access denied")

	// ErrHasChildren means deletion or direct status mutation was
	// attempted on an item that has subitems.
	ErrHasChildren = errors.New("item has subitems")

	// ErrCannotRemoveForceTag means a tag removal would violate the
	// force-tags guard.
	ErrCannotRemoveForceTag = errors.New("cannot remove forced tag")

	// ErrWouldCreateCycle means a dependency insertion or hierarchy move
	// would introduce a cycle.
	ErrWouldCreateCycle = errors.New("would create a cycle")

	// ErrTagLimit means the global tag cap (the palette size) is reached.
	ErrTagLimit = errors.New("tag limit reached")

	// ErrStorageFailure wraps an unexpected error from the store.
	ErrStorageFailure = errors.New("storage failure")
)

// mapStorageError converts storage sentinels into façade error kinds.
// Context cancellation passes through; anything unrecognized is a
// storage failure carrying its cause.
func mapStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return ErrDuplicateKey
	case errors.Is(err, storage.ErrCycle):
		return ErrWouldCreateCycle
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
}

// invalidf builds an ErrInvalidArgument with a formatted message
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

// IsNotFound reports whether err is the façade's not-found kind
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsAccessDenied reports whether err is the façade's access-denied kind
func IsAccessDenied(err error) bool { return errors.Is(err, ErrAccessDenied) }
