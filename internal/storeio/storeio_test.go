package storeio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBackupCopiesPriorContent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "shortcuts.vdf")
	original := []byte{0x00, 's', 0x00, 0x08}
	if err := os.WriteFile(target, original, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	backupPath, err := Backup(target)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if !strings.Contains(backupPath, ".bak.") {
		t.Fatalf("unexpected backup path %q", backupPath)
	}

	got, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("backup content = %v, want %v", got, original)
	}
}

func TestBackupSameSecondGetsDistinctNames(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "shortcuts.vdf")
	if err := os.WriteFile(target, []byte("v1"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	first, err := Backup(target)
	if err != nil {
		t.Fatalf("first Backup: %v", err)
	}
	if err := os.WriteFile(target, []byte("v2"), 0o644); err != nil {
		t.Fatalf("rewrite target: %v", err)
	}

	// The clock is pinned so both backups land in the same second.
	restore := nowFunc
	nowFunc = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	defer func() { nowFunc = restore }()

	second, err := Backup(target)
	if err != nil {
		t.Fatalf("second Backup: %v", err)
	}
	third, err := Backup(target)
	if err != nil {
		t.Fatalf("third Backup: %v", err)
	}
	if second == first || third == second {
		t.Fatalf("backup paths collide: %q %q %q", first, second, third)
	}
	for _, p := range []string{second, third} {
		got, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if string(got) != "v2" {
			t.Fatalf("backup %s content = %q, want v2", p, got)
		}
	}
}

func TestBackupMissingTargetIsNoop(t *testing.T) {
	dir := t.TempDir()
	backupPath, err := Backup(filepath.Join(dir, "absent.vdf"))
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if backupPath != "" {
		t.Fatalf("expected empty backup path, got %q", backupPath)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files, got %d", len(entries))
	}
}

func TestWriteAtomicCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config", "config.vdf")

	if err := WriteAtomic(target, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(got) != "data" {
		t.Fatalf("content = %q, want data", got)
	}

	// No temp file left behind.
	if _, err := os.Stat(target + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file still present: %v", err)
	}
}

func TestWriteAtomicReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "file")
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := WriteAtomic(target, []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	got, _ := os.ReadFile(target)
	if string(got) != "new" {
		t.Fatalf("content = %q, want new", got)
	}
}
