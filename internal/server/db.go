package server

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const SQLiteFileName = "keyhost.db"

func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable wal")
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return db, nil
}
