package shortcuts

import (
	"vgi/internal/vdf"
)

// FindNumericContainer returns the first map node, in pre-order traversal,
// whose keys are all non-empty decimal strings. Stores normally hold exactly
// one such container; when a hand-edited file holds several, the first found
// wins, matching the launcher's own tolerance.
func FindNumericContainer(root *vdf.Node) *vdf.Node {
	if !root.IsMap() {
		return nil
	}
	if root.Len() > 0 && allNumericKeys(root) {
		return root
	}
	for _, key := range root.Keys() {
		child, _ := root.Get(key)
		if !child.IsMap() {
			continue
		}
		if found := FindNumericContainer(child); found != nil {
			return found
		}
	}
	return nil
}

// LocateOrCreate returns the entries container inside root, creating (or
// reusing) a map under fallbackKey when no numeric-keyed container exists.
func LocateOrCreate(root *vdf.Node, fallbackKey string) *vdf.Node {
	if found := FindNumericContainer(root); found != nil {
		return found
	}
	return root.Map(fallbackKey)
}

func allNumericKeys(node *vdf.Node) bool {
	for _, key := range node.Keys() {
		if !isDecimal(key) {
			return false
		}
	}
	return true
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
