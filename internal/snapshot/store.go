// Package snapshot archives generated project trees so a regeneration or
// process restart does not silently lose the last good output. Saving is
// best-effort: a snapshot failure never fails the generation that
// produced the tree.
package snapshot

import (
	"context"
	"errors"

	"designify/internal/projecttree"
)

var ErrNotFound = errors.New("snapshot: not found")

// Store persists individual project files under a project ID.
type Store interface {
	Put(ctx context.Context, projectID, path string, content []byte) error
	Get(ctx context.Context, projectID, path string) ([]byte, error)
	List(ctx context.Context, projectID string) ([]string, error)
}

// SaveTree flattens the tree and writes every file leaf to the store.
// The first write error aborts the walk and is returned to the caller,
// who is expected to log and move on.
func SaveTree(ctx context.Context, store Store, projectID string, tree *projecttree.Tree) error {
	if store == nil {
		return nil
	}
	return tree.Walk(func(path string, file *projecttree.File) error {
		return store.Put(ctx, projectID, path, []byte(file.Contents))
	})
}
