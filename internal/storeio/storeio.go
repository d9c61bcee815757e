// Package storeio holds the file-handling primitives shared by the store
// writers: timestamped backup copies and atomic whole-file replacement.
package storeio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

var nowFunc = time.Now

// Backup copies the current content of path to <path>.bak.<timestamp> and
// returns the backup path. A missing target is a no-op, not an error: the
// subsequent write creates the file fresh and there is nothing to preserve.
func Backup(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("open for backup: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stat for backup: %w", err)
	}

	ts := nowFunc().Format("20060102-150405")
	backupPath := path + ".bak." + ts

	// Timestamps have one-second granularity; a second write within the same
	// second gets a counter suffix instead of failing.
	dst, err := os.OpenFile(backupPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	for n := 1; err != nil && errors.Is(err, os.ErrExist) && n < 1000; n++ {
		backupPath = fmt.Sprintf("%s.bak.%s.%d", path, ts, n)
		dst, err = os.OpenFile(backupPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	}
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(backupPath)
		return "", fmt.Errorf("copy backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("close backup: %w", err)
	}
	return backupPath, nil
}

// WriteAtomic replaces the file at path with data, writing through a
// temporary file and renaming over the target. The destination directory is
// created when missing. In-place truncate-then-write is unsafe for store
// files and deliberately not offered.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
