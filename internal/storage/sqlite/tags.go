package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

func insertTag(ctx context.Context, q querier, tag *types.Tag) error {
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now().UTC()
	}
	tag.Name = strings.ToLower(tag.Name)

	result, err := q.ExecContext(ctx, `
		INSERT INTO list_tags (name, color, created_at) VALUES (?, ?, ?)
	`, tag.Name, tag.Color, tag.CreatedAt)
	if err != nil {
		return wrapDBError("insert tag", err)
	}

	tag.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted tag id: %w", err)
	}
	return nil
}

func getTagByName(ctx context.Context, q querier, name string) (*types.Tag, error) {
	var tag types.Tag
	err := q.QueryRowContext(ctx, `
		SELECT id, name, color, created_at FROM list_tags WHERE name = ?
	`, strings.ToLower(name)).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt)
	if err != nil {
		return nil, wrapDBErrorf(err, "get tag %q", name)
	}
	return &tag, nil
}

func getAllTags(ctx context.Context, q querier) ([]*types.Tag, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, color, created_at FROM list_tags ORDER BY name`)
	if err != nil {
		return nil, wrapDBError("get all tags", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []*types.Tag
	for rows.Next() {
		var tag types.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

func assignTag(ctx context.Context, q querier, listID, tagID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO list_tag_assignments (list_id, tag_id, assigned_at) VALUES (?, ?, ?)
	`, listID, tagID, time.Now().UTC())
	if err != nil {
		return wrapDBError("assign tag", err)
	}
	return nil
}

func unassignTag(ctx context.Context, q querier, listID, tagID int64) error {
	result, err := q.ExecContext(ctx, `
		DELETE FROM list_tag_assignments WHERE list_id = ? AND tag_id = ?
	`, listID, tagID)
	if err != nil {
		return wrapDBError("unassign tag", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("unassign tag %d from list %d: %w", tagID, listID, ErrNotFound)
	}
	return nil
}

func updateTagColor(ctx context.Context, q querier, id int64, color string) error {
	if !types.IsPaletteColor(color) {
		return fmt.Errorf("color %q is not in the palette", color)
	}
	result, err := q.ExecContext(ctx, `UPDATE list_tags SET color = ? WHERE id = ?`, color, id)
	if err != nil {
		return wrapDBError("update tag color", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update tag %d: %w", id, ErrNotFound)
	}
	return nil
}

func deleteTag(ctx context.Context, q querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM list_tags WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete tag", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete tag %d: %w", id, ErrNotFound)
	}
	return nil
}

func getListTags(ctx context.Context, q querier, listID int64) ([]*types.Tag, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.id, t.name, t.color, t.created_at
		FROM list_tags t
		JOIN list_tag_assignments a ON a.tag_id = t.id
		WHERE a.list_id = ?
		ORDER BY t.name
	`, listID)
	if err != nil {
		return nil, wrapDBError("get list tags", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []*types.Tag
	for rows.Next() {
		var tag types.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

// CreateTag creates a tag. Names are normalized to lower case.
func (s *Store) CreateTag(ctx context.Context, tag *types.Tag) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.CreateTag(ctx, tag)
	})
}

// GetTagByName retrieves a tag by normalized name
func (s *Store) GetTagByName(ctx context.Context, name string) (*types.Tag, error) {
	return getTagByName(ctx, s.db, name)
}

// GetAllTags returns every tag sorted by name
func (s *Store) GetAllTags(ctx context.Context) ([]*types.Tag, error) {
	return getAllTags(ctx, s.db)
}

// UpdateTagColor reassigns a tag's palette color
func (s *Store) UpdateTagColor(ctx context.Context, id int64, color string) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.UpdateTagColor(ctx, id, color)
	})
}

// DeleteTag removes a tag; assignments cascade, lists are untouched
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.DeleteTag(ctx, id)
	})
}

// AssignTag attaches a tag to a list.
// Returns ErrConflict if the assignment already exists.
func (s *Store) AssignTag(ctx context.Context, listID, tagID int64) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.AssignTag(ctx, listID, tagID)
	})
}

// UnassignTag detaches a tag from a list
func (s *Store) UnassignTag(ctx context.Context, listID, tagID int64) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.UnassignTag(ctx, listID, tagID)
	})
}

// GetListTags returns a list's tags sorted by name
func (s *Store) GetListTags(ctx context.Context, listID int64) ([]*types.Tag, error) {
	return getListTags(ctx, s.db, listID)
}

// GetListsByTagsAny returns lists carrying at least one of the named tags
// (OR semantics), in natural key order
func (s *Store) GetListsByTagsAny(ctx context.Context, names []string) ([]*types.List, error) {
	return s.getListsByTags(ctx, names, false)
}

// GetListsByTagsAll returns lists carrying every named tag (AND
// semantics), in natural key order. Used by the force-tags predicate.
func (s *Store) GetListsByTagsAll(ctx context.Context, names []string) ([]*types.List, error) {
	return s.getListsByTags(ctx, names, true)
}

func (s *Store) getListsByTags(ctx context.Context, names []string, requireAll bool) ([]*types.List, error) {
	if len(names) == 0 {
		return nil, nil
	}

	normalized := make([]any, len(names))
	placeholders := make([]string, len(names))
	for i, n := range names {
		normalized[i] = strings.ToLower(n)
		placeholders[i] = "?"
	}

	query := `
		SELECT ` + prefixedListColumns("l") + `
		FROM todo_lists l
		JOIN list_tag_assignments a ON a.list_id = l.id
		JOIN list_tags t ON t.id = a.tag_id
		WHERE t.name IN (` + strings.Join(placeholders, ", ") + `)
		GROUP BY l.id
	`
	if requireAll {
		query += fmt.Sprintf(` HAVING COUNT(DISTINCT t.name) = %d`, len(names))
	}

	rows, err := s.db.QueryContext(ctx, query, normalized...)
	if err != nil {
		return nil, wrapDBError("get lists by tags", err)
	}
	defer func() { _ = rows.Close() }()

	var lists []*types.List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lists: %w", err)
	}

	types.SortListsNatural(lists)
	return lists, nil
}

// prefixedListColumns qualifies listColumns with a table alias for joins
func prefixedListColumns(alias string) string {
	cols := ""
	for i, c := range []string{"id", "list_key", "title", "description", "list_type", "status", "metadata", "created_at", "updated_at"} {
		if i > 0 {
			cols += ", "
		}
		cols += alias + "." + c
	}
	return cols
}
