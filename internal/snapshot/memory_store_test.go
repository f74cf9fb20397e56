package snapshot

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"designify/internal/projecttree"
)

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "project-1", "src/main.jsx", []byte("entry")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := store.Get(ctx, "project-1", "src/main.jsx")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "entry" {
		t.Fatalf("Get() = %q", got)
	}

	if _, err := store.Get(ctx, "project-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
	if err := store.Put(ctx, "", "a", nil); err == nil {
		t.Fatalf("Put with empty project id should fail")
	}
}

func TestSaveTreeFlattensEveryFile(t *testing.T) {
	tree := projecttree.New()
	tree.Merge(projecttree.Payload{
		Components: map[string]string{"Nav.jsx": "nav"},
		Pages:      map[string]string{"main.jsx": "entry"},
	})

	store := NewMemoryStore()
	ctx := context.Background()
	if err := SaveTree(ctx, store, "project-1", tree); err != nil {
		t.Fatalf("SaveTree() error = %v", err)
	}

	paths, err := store.List(ctx, "project-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"index.html", "package.json", "src/components/Nav.jsx", "src/main.jsx", "vite.config.js"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("List() = %v, want %v", paths, want)
	}

	got, err := store.Get(ctx, "project-1", "src/components/Nav.jsx")
	if err != nil || string(got) != "nav" {
		t.Fatalf("Get() = %q, %v", got, err)
	}
}

func TestSaveTreeNilStoreIsNoop(t *testing.T) {
	if err := SaveTree(context.Background(), nil, "p", projecttree.New()); err != nil {
		t.Fatalf("SaveTree(nil store) error = %v", err)
	}
}
