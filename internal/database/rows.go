package database

import (
	"context"
	"database/sql"
)

// Row is a single result row keyed by column name.  All reporting and
// browse paths read rows by name, never by position, so the shape is
// identical for both backends.
type Row map[string]any

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// QueryMaps runs a query and fetches every row as a column-name-keyed
// map.  []byte values are converted to string so that callers see the
// same value shape regardless of driver.
func QueryMaps(ctx context.Context, q Querier, query string, args ...any) ([]Row, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		m := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				m[c] = string(b)
			} else {
				m[c] = vals[i]
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// QueryMap runs a query expected to yield at most one row and returns
// it as a map.  When no row matches it returns (nil, sql.ErrNoRows).
func QueryMap(ctx context.Context, q Querier, query string, args ...any) (Row, error) {
	maps, err := QueryMaps(ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	if len(maps) == 0 {
		return nil, sql.ErrNoRows
	}
	return maps[0], nil
}
