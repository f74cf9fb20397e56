// Package projecttree holds the in-memory representation of a generated
// project: an ordered hierarchy of directories and files that the export
// walk and the sandbox preview both consume.
package projecttree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// File is a leaf node carrying the full text of one generated file.
type File struct {
	Contents string `json:"contents"`
}

// Node is a tagged union: exactly one of File or Directory is set.
type Node struct {
	File      *File      `json:"file,omitempty"`
	Directory *Directory `json:"directory,omitempty"`
}

// Directory keeps its entries in insertion order so that the export walk
// is deterministic. Names are unique within a directory.
type Directory struct {
	names []string
	nodes map[string]*Node
}

func NewDirectory() *Directory {
	return &Directory{nodes: make(map[string]*Node)}
}

// Set inserts a child node, replacing any existing entry with the same
// name without changing its position.
func (d *Directory) Set(name string, node *Node) {
	if d.nodes == nil {
		d.nodes = make(map[string]*Node)
	}
	if _, ok := d.nodes[name]; !ok {
		d.names = append(d.names, name)
	}
	d.nodes[name] = node
}

// SetFile inserts or replaces a file entry.
func (d *Directory) SetFile(name, contents string) {
	d.Set(name, &Node{File: &File{Contents: contents}})
}

func (d *Directory) Get(name string) (*Node, bool) {
	n, ok := d.nodes[name]
	return n, ok
}

func (d *Directory) Len() int {
	return len(d.names)
}

// Names returns entry names in insertion order. The slice is a copy.
func (d *Directory) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// MarshalJSON renders entries as a JSON object in insertion order.
func (d *Directory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range d.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(d.nodes[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object token-by-token so that the
// document's key order is preserved as insertion order.
func (d *Directory) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("directory: expected JSON object")
	}
	d.names = nil
	d.nodes = make(map[string]*Node)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("directory: expected string key")
		}
		var node Node
		if err := dec.Decode(&node); err != nil {
			return err
		}
		d.Set(name, &node)
	}
	// consume the closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Tree is a project rooted at a single directory. Its JSON form is the
// root directory object itself, so a serialized tree looks like
// {"index.html": {"file": ...}, "src": {"directory": ...}}.
type Tree struct {
	Root *Directory
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	if t.Root == nil {
		return []byte("{}"), nil
	}
	return t.Root.MarshalJSON()
}

func (t *Tree) UnmarshalJSON(data []byte) error {
	if t.Root == nil {
		t.Root = NewDirectory()
	}
	return t.Root.UnmarshalJSON(data)
}

// Payload is the AI-generated content handed to Merge. Each section maps
// a filename to full file text. Any section may be nil.
type Payload struct {
	Components map[string]string `json:"components"`
	Styles     map[string]string `json:"styles"`
	Pages      map[string]string `json:"pages"`
}

// Walk visits every file in depth-first, entries-in-insertion-order
// traversal. Paths are slash-joined and relative to the root. Returning
// an error from fn aborts the walk.
func (t *Tree) Walk(fn func(path string, file *File) error) error {
	if t == nil || t.Root == nil {
		return nil
	}
	return walkDir(t.Root, "", fn)
}

func walkDir(dir *Directory, prefix string, fn func(path string, file *File) error) error {
	for _, name := range dir.names {
		node := dir.nodes[name]
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		switch {
		case node.File != nil:
			if err := fn(path, node.File); err != nil {
				return err
			}
		case node.Directory != nil:
			if err := walkDir(node.Directory, path, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// FileCount returns the number of file leaves in the tree.
func (t *Tree) FileCount() int {
	n := 0
	_ = t.Walk(func(string, *File) error {
		n++
		return nil
	})
	return n
}

// Validate checks that every node is exactly one of file or directory and
// that entry names are usable as path segments. Export runs this before
// the first remote write so malformed input never leaves partial remote
// state.
func (t *Tree) Validate() error {
	if t == nil || t.Root == nil {
		return fmt.Errorf("project tree has no root")
	}
	return validateDir(t.Root, "")
}

func validateDir(dir *Directory, prefix string) error {
	for _, name := range dir.names {
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "/\\") {
			return fmt.Errorf("invalid entry name %q", path)
		}
		node := dir.nodes[name]
		if node == nil {
			return fmt.Errorf("nil node at %q", path)
		}
		if (node.File == nil) == (node.Directory == nil) {
			return fmt.Errorf("node %q must be exactly one of file or directory", path)
		}
		if node.Directory != nil {
			if err := validateDir(node.Directory, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// sortedKeys gives map merges a stable order; payload sections arrive as
// plain maps with no order of their own.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
