package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/SergeyParamoshkin/usergraph/internal/model"
)

const defaultFileMode = 0o644

// Storage mirrors the collection on stable storage.
type Storage interface {
	Load() ([]*model.User, error)
	Save(users []*model.User) error
}

// FileStorage keeps the collection as a pretty-printed JSON array in a
// single file that is fully rewritten on every Save.
type FileStorage struct {
	Path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

// Load reads the collection. A missing file is an empty collection.
func (s *FileStorage) Load() ([]*model.User, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*model.User{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Path: s.Path, Err: err}
	}

	var users []*model.User
	if len(bytes.TrimSpace(data)) == 0 {
		return []*model.User{}, nil
	}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, &StorageError{Op: "decode", Path: s.Path, Err: err}
	}

	return users, nil
}

// Save writes users to a temp file next to Path and renames it into
// place, so readers see either the old or the new collection. The file
// keeps its permission bits; a new file gets defaultFileMode.
func (s *FileStorage) Save(users []*model.User) error {
	if users == nil {
		users = []*model.User{}
	}
	data, err := json.MarshalIndent(users, "", "    ")
	if err != nil {
		return &StorageError{Op: "encode", Path: s.Path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return &StorageError{Op: "write", Path: s.Path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	mode := os.FileMode(defaultFileMode)
	if fi, err := os.Stat(s.Path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return &StorageError{Op: "chmod", Path: s.Path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &StorageError{Op: "write", Path: s.Path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &StorageError{Op: "sync", Path: s.Path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StorageError{Op: "write", Path: s.Path, Err: err}
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return &StorageError{Op: "rename", Path: s.Path, Err: err}
	}

	// The rename already happened, so directory sync errors are ignored.
	syncDir(filepath.Dir(s.Path))

	return nil
}

// syncDir flushes the directory entry created by the rename. Platforms
// that cannot sync a directory are skipped.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()

	_ = d.Sync()
}
