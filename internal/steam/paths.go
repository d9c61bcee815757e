// Package steam locates the pieces of a local Steam installation the
// injector needs: the root, the profile's shortcuts store, the shared config
// store, and the Proton prefix holding the game executable.
package steam

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vgi/internal/vdf"
)

const (
	// EACExeName is the anti-cheat wrapper the shortcut must target.
	EACExeName = "start_protected_game.exe"

	// ShippingExeName marks the running client in the process table.
	ShippingExeName = "EVEVanguardClient-Win64-Shipping.exe"

	// DefaultCompatDataID is the compatdata folder the EVE launcher
	// installs Vanguard under.
	DefaultCompatDataID = "8500"
)

// Paths captures the resolved store locations for one profile.
type Paths struct {
	Root         string
	ProfileID    string
	ShortcutsVDF string
	ConfigVDF    string
}

// Profile is one userdata profile and its shortcuts store path. The store
// file may not exist yet for profiles that never had a non-Steam shortcut.
type Profile struct {
	ID           string
	ShortcutsVDF string
}

// DefaultRoots returns the candidate Steam roots in preference order.
func DefaultRoots() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots,
			filepath.Join(home, ".local", "share", "Steam"),
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", "data", "Steam"),
		)
	}
	return append(roots, "/usr/local/share/steam")
}

// FindRoots filters candidates (an optional explicit hint first, then the
// defaults) down to roots that actually contain a userdata directory.
// Candidates are deduplicated by resolved path, since ~/.steam/steam is
// commonly a symlink to ~/.local/share/Steam; the first spelling wins.
func FindRoots(hint string, extra []string) []string {
	var candidates []string
	if hint != "" {
		candidates = append(candidates, expandHome(hint))
	}
	for _, c := range extra {
		candidates = append(candidates, expandHome(c))
	}
	candidates = append(candidates, DefaultRoots()...)

	var out []string
	seen := map[string]bool{}
	for _, root := range candidates {
		key := root
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			key = resolved
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		if ok, _ := DirExists(filepath.Join(root, "userdata")); ok {
			out = append(out, root)
		}
	}
	return out
}

// Profiles lists the numeric profile directories under a root's userdata.
func Profiles(root string) ([]Profile, error) {
	userdata := filepath.Join(root, "userdata")
	entries, err := os.ReadDir(userdata)
	if err != nil {
		return nil, fmt.Errorf("read userdata: %w", err)
	}

	var out []Profile
	for _, e := range entries {
		if !e.IsDir() || !isDecimal(e.Name()) {
			continue
		}
		out = append(out, Profile{
			ID:           e.Name(),
			ShortcutsVDF: filepath.Join(userdata, e.Name(), "config", "shortcuts.vdf"),
		})
	}
	return out, nil
}

// ConfigVDF returns the shared config store path for a root.
func ConfigVDF(root string) string {
	return filepath.Join(root, "config", "config.vdf")
}

// LibraryFolders returns all library roots for an installation: the root
// itself plus every path listed in config/libraryfolders.vdf that has a
// steamapps directory. A missing or unparseable libraryfolders file reduces
// the answer to the root alone.
func LibraryFolders(root string) []string {
	libs := []string{root}
	seen := map[string]bool{root: true}

	data, err := os.ReadFile(filepath.Join(root, "config", "libraryfolders.vdf"))
	if err != nil {
		return libs
	}
	tree, err := vdf.DecodeText(data)
	if err != nil {
		return libs
	}

	folders := tree
	if child, ok := tree.Get("libraryfolders"); ok && child.IsMap() {
		folders = child
	}
	for _, key := range folders.Keys() {
		entry, _ := folders.Get(key)
		if !entry.IsMap() {
			continue
		}
		pathNode, ok := entry.Get("path")
		if !ok {
			continue
		}
		lib := pathNode.StringValue()
		if lib == "" || seen[lib] {
			continue
		}
		if ok, _ := DirExists(filepath.Join(lib, "steamapps")); ok {
			seen[lib] = true
			libs = append(libs, lib)
		}
	}
	return libs
}

// FindCompatPrefix searches the libraries for compatdata/<id>/pfx.
func FindCompatPrefix(libraries []string, compatID string) (string, bool) {
	for _, lib := range libraries {
		pfx := filepath.Join(lib, "steamapps", "compatdata", compatID, "pfx")
		if ok, _ := DirExists(pfx); ok {
			return pfx, true
		}
	}
	return "", false
}

// FindExeUnderPrefix walks pfx/drive_c for the named executable and returns
// its path relative to pfx with forward slashes.
func FindExeUnderPrefix(pfx, exeName string) (string, bool) {
	base := filepath.Join(pfx, "drive_c")
	if ok, _ := DirExists(base); !ok {
		return "", false
	}

	var found string
	filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree: keep looking elsewhere
		}
		if !d.IsDir() && d.Name() == exeName {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if found == "" {
		return "", false
	}
	rel, err := filepath.Rel(pfx, found)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// ValidatePrefixAndExe reports whether prefix looks like a Proton prefix and
// exeRel points at an existing file named exeName inside it.
func ValidatePrefixAndExe(prefix, exeRel, exeName string) bool {
	if prefix == "" || exeRel == "" {
		return false
	}
	prefix = expandHome(prefix)
	if ok, _ := DirExists(filepath.Join(prefix, "drive_c")); !ok {
		return false
	}
	exeRel = filepath.ToSlash(exeRel)
	if !strings.HasSuffix(exeRel, exeName) {
		return false
	}
	ok, _ := FileExists(filepath.Join(prefix, filepath.FromSlash(exeRel)))
	return ok
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
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
