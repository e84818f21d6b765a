package storage

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644
)

// FsyncDir opens the directory at path and calls fsync on it so that
// renames and removals inside it are durable.
func FsyncDir(path string) error {
	d, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "fsync dir open %s", path)
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return errors.Wrapf(err, "fsync dir sync %s", path)
	}
	if err := d.Close(); err != nil {
		return errors.Wrapf(err, "fsync dir close %s", path)
	}
	return nil
}

// AtomicWriteFile writes data to a temporary file next to finalPath, fsyncs
// it, renames it over finalPath and fsyncs the parent directory. Readers see
// either the old content or the new one, never a partial file.
func AtomicWriteFile(finalPath string, data []byte) error {
	dir := filepath.Dir(finalPath)
	tmp, err := os.CreateTemp(dir, ".atomic-*")
	if err != nil {
		return errors.Wrapf(err, "atomic write create temp in %s", dir)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "atomic write data")
	}
	if err := tmp.Chmod(FilePerm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "atomic write chmod")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "atomic write fsync")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "atomic write close")
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return errors.Wrapf(err, "atomic write rename %s → %s", tmpPath, finalPath)
	}
	if err := FsyncDir(dir); err != nil {
		return errors.Wrap(err, "atomic write fsync parent dir")
	}

	success = true
	return nil
}

// RemoveFile deletes path and fsyncs its parent directory. A missing file is
// not an error.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "remove %s", path)
	}
	return FsyncDir(filepath.Dir(path))
}

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirPerm)
}
