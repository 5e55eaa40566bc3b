package manager

import (
	"context"
	"fmt"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

// ensureTag returns the named tag, creating it with the next palette
// color when it does not exist yet. The name must already be normalized.
func (m *Manager) ensureTag(ctx context.Context, tx storage.Transaction, name string) (*types.Tag, error) {
	tag, err := tx.GetTagByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !IsNotFound(mapStorageError(err)) {
		return nil, fmt.Errorf("tag %q: %w", name, mapStorageError(err))
	}
	return m.createTag(ctx, tx, name)
}

// createTag inserts a tag and renormalizes palette colors. Colors are
// positional: after every create or delete, the nth tag in name order
// carries the nth palette color.
func (m *Manager) createTag(ctx context.Context, tx storage.Transaction, name string) (*types.Tag, error) {
	tags, err := tx.GetAllTags(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	if len(tags) >= types.MaxTags {
		return nil, fmt.Errorf("cannot create tag %q, palette of %d is full: %w", name, types.MaxTags, ErrTagLimit)
	}

	tag := &types.Tag{Name: name, Color: types.TagPalette[len(tags)]}
	if err := tx.CreateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("tag %q: %w", name, mapStorageError(err))
	}
	if err := m.renormalizeTagColors(ctx, tx); err != nil {
		return nil, err
	}

	// Re-read for the post-normalization color.
	tag, err = tx.GetTagByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("tag %q: %w", name, mapStorageError(err))
	}
	return tag, nil
}

func (m *Manager) renormalizeTagColors(ctx context.Context, tx storage.Transaction) error {
	tags, err := tx.GetAllTags(ctx)
	if err != nil {
		return mapStorageError(err)
	}
	for i, tag := range tags {
		if i >= len(types.TagPalette) {
			break
		}
		if tag.Color == types.TagPalette[i] {
			continue
		}
		if err := tx.UpdateTagColor(ctx, tag.ID, types.TagPalette[i]); err != nil {
			return mapStorageError(err)
		}
	}
	return nil
}

// CreateTag creates a new global tag. The 13th tag is rejected with
// ErrTagLimit, an existing name with ErrDuplicateKey.
func (m *Manager) CreateTag(ctx context.Context, name string) (*types.Tag, error) {
	name = normalizeTagName(name)
	if name == "" {
		return nil, invalidf("tag name is required")
	}

	var tag *types.Tag
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if existing, err := tx.GetTagByName(ctx, name); err == nil {
			return fmt.Errorf("tag %q: %w", existing.Name, ErrDuplicateKey)
		} else if !IsNotFound(mapStorageError(err)) {
			return fmt.Errorf("tag %q: %w", name, mapStorageError(err))
		}

		var err error
		tag, err = m.createTag(ctx, tx, name)
		if err != nil {
			return err
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			Action:   types.ActionTagCreated,
			NewValue: map[string]any{"tag": tag.Name, "color": tag.Color},
		})
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// GetTag returns one tag by name
func (m *Manager) GetTag(ctx context.Context, name string) (*types.Tag, error) {
	name = normalizeTagName(name)
	tag, err := m.store.GetTagByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("tag %q: %w", name, mapStorageError(err))
	}
	return tag, nil
}

// ListTags returns every tag sorted by name. Tags are global entities,
// so the access scope does not restrict this listing.
func (m *Manager) ListTags(ctx context.Context) ([]*types.Tag, error) {
	tags, err := m.store.GetAllTags(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return tags, nil
}

// DeleteTag removes a tag and all its list assignments, then
// renormalizes the palette. Forced tags cannot be deleted.
func (m *Manager) DeleteTag(ctx context.Context, name string) error {
	name = normalizeTagName(name)
	if name == "" {
		return invalidf("tag name is required")
	}
	if m.scope.IsForceTag(name) {
		return fmt.Errorf("tag %q: %w", name, ErrCannotRemoveForceTag)
	}

	return m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		tag, err := tx.GetTagByName(ctx, name)
		if err != nil {
			return fmt.Errorf("tag %q: %w", name, mapStorageError(err))
		}
		if err := tx.DeleteTag(ctx, tag.ID); err != nil {
			return fmt.Errorf("tag %q: %w", name, mapStorageError(err))
		}
		if err := m.renormalizeTagColors(ctx, tx); err != nil {
			return err
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			Action:   types.ActionTagDeleted,
			OldValue: map[string]any{"tag": tag.Name, "color": tag.Color},
		})
	})
}
