// Package storage persists the workflow board, the saved session and the
// file selection in a small key-value store.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Storage keys.
const (
	KeyWorkflowStates = "workflowStates"
	KeySession        = "drawingParserSession"
	KeySelection      = "selection"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Store is a string-keyed blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend rooted at the workspace root.
func Open(backend, root, sqlitePath string) (Store, error) {
	switch backend {
	case "", BackendFile:
		repo := NewFilesystemRepository(root)
		if err := repo.Initialize(); err != nil {
			return nil, err
		}
		return repo, nil
	case BackendSQLite:
		repo := NewFilesystemRepository(root)
		if err := repo.Initialize(); err != nil {
			return nil, err
		}
		return OpenSQLite(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage key cannot be empty")
	}
	return nil
}
