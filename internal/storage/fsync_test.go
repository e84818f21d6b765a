package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFsyncDir(t *testing.T) {
	dir := t.TempDir()
	if err := FsyncDir(dir); err != nil {
		t.Errorf("FsyncDir: %v", err)
	}
}

func TestFsyncDir_NotExists(t *testing.T) {
	err := FsyncDir("/nonexistent/path/dir")
	if err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "mod3.yaml")
	data := []byte("states: [S0]\n")

	if err := AtomicWriteFile(finalPath, data); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(finalPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(data) {
		t.Errorf("content = %q, want %q", got, data)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected 1 entry in dir, got %d", len(entries))
	}
}

func TestAtomicWriteFile_Overwrite(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "def.json")

	if err := AtomicWriteFile(finalPath, []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWriteFile(finalPath, []byte("new")); err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(finalPath)
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
}

func TestAtomicWriteFile_MissingDir(t *testing.T) {
	err := AtomicWriteFile(filepath.Join(t.TempDir(), "missing", "def.yaml"), []byte("x"))
	if err == nil {
		t.Error("expected error when parent directory does not exist")
	}
}

func TestRemoveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "def.yaml")
	if err := os.WriteFile(path, []byte("x"), FilePerm); err != nil {
		t.Fatal(err)
	}

	if err := RemoveFile(path); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if FileExists(path) {
		t.Error("file should be gone")
	}
	if err := RemoveFile(path); err != nil {
		t.Errorf("removing a missing file should succeed, got %v", err)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}
}
