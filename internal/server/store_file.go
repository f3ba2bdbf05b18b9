package server

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"keyhost/internal/shared"

	"github.com/moby/sys/atomicwriter"
	"github.com/pkg/errors"
)

const KeyFileName = "gemini-key.json"

// FileStore keeps the key as a small JSON record inside Dir.
type FileStore struct {
	Dir  string
	Path string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, Path: filepath.Join(dir, KeyFileName)}
}

func (s *FileStore) ReadKey() (string, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", errors.Wrapf(err, "read %s", s.Path)
	}

	var parsed any
	if err := json.Unmarshal(b, &parsed); err != nil {
		return "", errors.Wrapf(err, "parse %s", s.Path)
	}
	// anything other than an object with a string "key" reads as empty
	obj, _ := parsed.(map[string]any)
	key, _ := obj["key"].(string)
	return strings.TrimSpace(key), nil
}

func (s *FileStore) WriteKey(key string) error {
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return errors.Wrapf(err, "create data dir %s", s.Dir)
	}
	b, err := json.MarshalIndent(shared.StoredKeyRecord{Key: key}, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicwriter.WriteFile(s.Path, b, 0600); err != nil {
		return errors.Wrapf(err, "write %s", s.Path)
	}
	return nil
}

func (s *FileStore) DeleteKey() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "remove %s", s.Path)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
