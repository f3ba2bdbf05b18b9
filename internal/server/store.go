package server

import (
	"os"
	"path/filepath"
	"sync"

	"keyhost/internal/shared"

	"github.com/pkg/errors"
)

// Store persists the single stored key. ReadKey returns "" when nothing is
// stored; DeleteKey treats an absent record as success. Callers validate the
// key before WriteKey.
type Store interface {
	ReadKey() (string, error)
	WriteKey(key string) error
	DeleteKey() error
	Close() error
}

// OpenStore returns the backend selected by c.Store.
func OpenStore(c *shared.ServerConfig) (Store, error) {
	switch c.Store {
	case shared.StoreFile:
		return NewFileStore(c.DataDir), nil
	case shared.StoreSQLite:
		if err := os.MkdirAll(c.DataDir, 0700); err != nil {
			return nil, errors.Wrapf(err, "create data dir %s", c.DataDir)
		}
		db, err := OpenDB(filepath.Join(c.DataDir, SQLiteFileName))
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(db), nil
	case shared.StoreMemory:
		return NewMemStore(), nil
	}
	return nil, errors.Errorf("unknown store %q", c.Store)
}

// MemStore keeps the key in process memory only.
type MemStore struct {
	mu  sync.Mutex
	key string
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) ReadKey() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key, nil
}

func (s *MemStore) WriteKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	return nil
}

func (s *MemStore) DeleteKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = ""
	return nil
}

func (s *MemStore) Close() error { return nil }
