package sqlite

import (
	"context"

	"github.com/hipotures/todoit/internal/types"
)

// GetListProgress computes status counts for every item in a list in a
// single aggregate query. An item counts as blocked when any blocking
// dependency of it is still incomplete.
func (s *Store) GetListProgress(ctx context.Context, listID int64) (*types.ListProgress, error) {
	var progress types.ListProgress
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status != 'completed' AND EXISTS (
				SELECT 1 FROM item_dependencies d
				JOIN todo_items req ON req.id = d.required_item_id
				WHERE d.dependent_item_id = todo_items.id
				  AND d.dependency_type IN ('blocks', 'requires')
				  AND req.status != 'completed'
			) THEN 1 ELSE 0 END), 0)
		FROM todo_items WHERE list_id = ?
	`, listID).Scan(&progress.Total, &progress.Pending, &progress.InProgress,
		&progress.Completed, &progress.Failed, &progress.Blocked)
	if err != nil {
		return nil, wrapDBError("get list progress", err)
	}

	if progress.Total > 0 {
		progress.PercentDone = float64(progress.Completed) / float64(progress.Total) * 100
		progress.PercentFailed = float64(progress.Failed) / float64(progress.Total) * 100
	}
	return &progress, nil
}
