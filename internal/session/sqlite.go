package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps JSON-encoded values in a single SQLite table.
type SQLiteStore[T any] struct {
	conn  *sqlx.DB
	table string
}

type record struct {
	ID        string `db:"id"`
	Body      string `db:"body"`
	UpdatedAt int64  `db:"updated_at"`
}

// OpenSQLite opens or creates a SQLite database at path and ensures the table
// exists. The table name must be a trusted identifier.
func OpenSQLite[T any](path, table string) (*SQLiteStore[T], error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &SQLiteStore[T]{conn: conn, table: table}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore[T]) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore[T]) migrate() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_updated ON %[1]s(updated_at);
	`, s.table)
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLiteStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	var rec record
	err := s.conn.GetContext(ctx, &rec, "SELECT id, body, updated_at FROM "+s.table+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	var v T
	if err := json.Unmarshal([]byte(rec.Body), &v); err != nil {
		return zero, false, fmt.Errorf("decode %s: %w", id, err)
	}
	return v, true, nil
}

func (s *SQLiteStore[T]) Put(ctx context.Context, id string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	_, err = s.conn.ExecContext(ctx,
		"INSERT INTO "+s.table+" (id, body, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at",
		id, string(body), time.Now().UnixMilli())
	return err
}

func (s *SQLiteStore[T]) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM "+s.table+" WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the values ordered by id.
func (s *SQLiteStore[T]) List(ctx context.Context) ([]T, error) {
	var recs []record
	if err := s.conn.SelectContext(ctx, &recs, "SELECT id, body, updated_at FROM "+s.table+" ORDER BY id"); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := json.Unmarshal([]byte(rec.Body), &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", rec.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *SQLiteStore[T]) NewID() string {
	return newID()
}
