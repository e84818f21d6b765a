package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.toml", "c.JSON", "notes.txt", ".atomic-123"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, FilePerm); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.yaml"), DirPerm); err != nil {
		t.Fatal(err)
	}

	got, err := ListFiles(dir, ".yaml", ".toml", ".json")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.toml", "b.yaml", "c.JSON"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListFiles = %v, want %v", got, want)
	}

	all, err := ListFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("ListFiles without filter = %v, want 4 entries", all)
	}
}

func TestListFiles_MissingDir(t *testing.T) {
	got, err := ListFiles("/nonexistent/path/dir")
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if FileExists(path) {
		t.Error("file should not exist yet")
	}
	if err := os.WriteFile(path, nil, FilePerm); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("file should exist")
	}
	if FileExists(dir) {
		t.Error("directory is not a file")
	}
}
