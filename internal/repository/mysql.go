package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/bson"
)

// SQLCollection stores each document as a BSON blob in its own MySQL table,
// one row per key.  seq preserves insertion order across upserts.
type SQLCollection[K Key, T any] struct {
	DB    *sql.DB
	table string
}

func NewSQLCollection[K Key, T any](db *sql.DB, table string) *SQLCollection[K, T] {
	return &SQLCollection[K, T]{DB: db, table: table}
}

// EnsureTable creates the backing table when it does not exist.
func (s *SQLCollection[K, T]) EnsureTable(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  seq        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
  doc_key    VARCHAR(255) NOT NULL,
  body       MEDIUMBLOB NOT NULL,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  UNIQUE KEY uq_%s_doc_key (doc_key)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, s.table, s.table))
	return err
}

func (s *SQLCollection[K, T]) Get(ctx context.Context, key K) (T, error) {
	var out T
	var raw []byte
	err := s.DB.QueryRowContext(ctx,
		"SELECT body FROM "+s.table+" WHERE doc_key=? LIMIT 1", keyString(key)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, err
	}
	err = bson.Unmarshal(raw, &out)
	return out, err
}

func (s *SQLCollection[K, T]) Insert(ctx context.Context, key K, doc T) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx,
		"INSERT INTO "+s.table+" (doc_key, body) VALUES (?,?)", keyString(key), raw)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (s *SQLCollection[K, T]) Upsert(ctx context.Context, key K, doc T) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx,
		"INSERT INTO "+s.table+" (doc_key, body) VALUES (?,?) ON DUPLICATE KEY UPDATE body=VALUES(body)",
		keyString(key), raw)
	return err
}

func (s *SQLCollection[K, T]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.table).Scan(&n)
	return n, err
}

func (s *SQLCollection[K, T]) List(ctx context.Context, skip, limit int64) ([]T, error) {
	if limit <= 0 {
		// MySQL has no "no limit"; the documented idiom is the max value.
		limit = 1<<63 - 1
	}
	rows, err := s.DB.QueryContext(ctx,
		"SELECT body FROM "+s.table+" ORDER BY seq LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc T
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *SQLCollection[K, T]) Drop(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, "TRUNCATE TABLE "+s.table)
	return err
}

func keyString[K Key](key K) string {
	return fmt.Sprint(key)
}

// isDuplicate reports a MySQL duplicate entry error (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
