package server

import (
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// SQLiteStore keeps the key in a single-row table.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

func (s *SQLiteStore) ReadKey() (string, error) {
	var key string
	err := s.DB.QueryRow(`SELECT key FROM stored_key WHERE id = 1`).Scan(&key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", errors.Wrap(err, "select stored key")
	}
	return strings.TrimSpace(key), nil
}

func (s *SQLiteStore) WriteKey(key string) error {
	_, err := s.DB.Exec(
		`INSERT OR REPLACE INTO stored_key (id, key, updated_at) VALUES (1, ?, ?)`,
		key, time.Now().Unix(),
	)
	return errors.Wrap(err, "upsert stored key")
}

func (s *SQLiteStore) DeleteKey() error {
	_, err := s.DB.Exec(`DELETE FROM stored_key WHERE id = 1`)
	return errors.Wrap(err, "delete stored key")
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
