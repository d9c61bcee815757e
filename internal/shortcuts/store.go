package shortcuts

import (
	"errors"
	"fmt"
	"os"

	"vgi/internal/storeio"
	"vgi/internal/vdf"
)

// FallbackContainerKey is where the entries container is created when a
// store has none.
const FallbackContainerKey = "shortcuts"

// Store wraps a shortcuts.vdf file: binary-encoded tree, backup before every
// real write, atomic replacement.
type Store struct {
	Path string

	root *vdf.Node
}

// OpenStore reads and decodes the store at path. A missing file yields an
// empty store with a fresh entries container, matching a profile that has
// never had a non-Steam shortcut.
func OpenStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			root := vdf.NewMap()
			root.Map(FallbackContainerKey)
			return &Store{Path: path, root: root}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	root, err := vdf.DecodeBinary(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &Store{Path: path, root: root}, nil
}

// Root exposes the decoded tree.
func (s *Store) Root() *vdf.Node {
	return s.root
}

// Container returns the entries container, locating or creating it.
func (s *Store) Container() *vdf.Node {
	return LocateOrCreate(s.root, FallbackContainerKey)
}

// Save backs up the current file (no-op when absent) and atomically writes
// the encoded tree. Any error aborts before the target is touched.
func (s *Store) Save() error {
	data, err := vdf.EncodeBinary(s.root)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.Path, err)
	}
	if _, err := storeio.Backup(s.Path); err != nil {
		return fmt.Errorf("backup %s: %w", s.Path, err)
	}
	return storeio.WriteAtomic(s.Path, data, 0o644)
}
