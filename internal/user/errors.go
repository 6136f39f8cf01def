package user

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrDuplicateID = errors.New("invalid or duplicate id")
)

// StorageError is returned when the collection could not be read from or
// written to its backing file. The in-memory collection is unchanged.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
