package sqlite

import "context"

// SetMetadata stores an engine-level key/value pair, such as the schema
// fingerprint or the last import source path.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return wrapDBError("set metadata", err)
	}
	return nil
}

// GetMetadata retrieves an engine-level value. Missing keys return an
// empty string rather than an error.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if IsNotFound(wrapDBError("get metadata", err)) {
			return "", nil
		}
		return "", wrapDBError("get metadata", err)
	}
	return value, nil
}
