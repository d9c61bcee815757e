// Package compat reads and patches the CompatToolMapping section of the
// launcher's text-encoded config store.
package compat

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"vgi/internal/storeio"
	"vgi/internal/vdf"
)

// mappingPath is the fixed nesting down to the identifier-keyed map.
var mappingPath = []string{"InstallConfigStore", "Software", "Valve", "Steam", "CompatToolMapping"}

// Mapping is one identifier→tool association.
type Mapping struct {
	Name     string
	Config   string
	Priority int
}

// Store wraps a config.vdf file: text-encoded tree, backup before every real
// write, atomic replacement. A missing file starts from an empty tree.
type Store struct {
	Path string

	root *vdf.Node
}

// OpenStore reads and decodes the store at path.
func OpenStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Store{Path: path, root: vdf.NewMap()}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	root, err := vdf.DecodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &Store{Path: path, root: root}, nil
}

// Root exposes the decoded tree.
func (s *Store) Root() *vdf.Node {
	return s.root
}

// Set inserts or overwrites the mapping for key, creating the nested path as
// needed.
func (s *Store) Set(key uint64, toolName string, priority int) {
	SetMapping(s.root, key, toolName, priority)
}

// Get returns the mapping stored for key.
func (s *Store) Get(key uint64) (Mapping, bool) {
	return GetMapping(s.root, key)
}

// Save backs up the current file (no-op when absent) and atomically writes
// the pretty-printed tree.
func (s *Store) Save() error {
	data, err := vdf.EncodeText(s.root, true)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.Path, err)
	}
	if _, err := storeio.Backup(s.Path); err != nil {
		return fmt.Errorf("backup %s: %w", s.Path, err)
	}
	return storeio.WriteAtomic(s.Path, data, 0o644)
}

// SetMapping navigates/creates the fixed path inside root and writes the
// record at the decimal form of key.
func SetMapping(root *vdf.Node, key uint64, toolName string, priority int) {
	node := root
	for _, level := range mappingPath {
		node = node.Map(level)
	}

	record := vdf.NewMap()
	record.Set("name", vdf.String(toolName))
	record.Set("config", vdf.String(""))
	record.Set("Priority", vdf.String(strconv.Itoa(priority)))
	node.Set(strconv.FormatUint(key, 10), record)
}

// GetMapping reads the record at key, if the path and key exist.
func GetMapping(root *vdf.Node, key uint64) (Mapping, bool) {
	node := root
	for _, level := range mappingPath {
		child, ok := node.Get(level)
		if !ok || !child.IsMap() {
			return Mapping{}, false
		}
		node = child
	}

	record, ok := node.Get(strconv.FormatUint(key, 10))
	if !ok || !record.IsMap() {
		return Mapping{}, false
	}

	m := Mapping{}
	if v, ok := record.Get("name"); ok {
		m.Name = v.StringValue()
	}
	if v, ok := record.Get("config"); ok {
		m.Config = v.StringValue()
	}
	if v, ok := record.Get("Priority"); ok {
		if p, err := strconv.Atoi(v.StringValue()); err == nil {
			m.Priority = p
		}
	}
	return m, true
}
