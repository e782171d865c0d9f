// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"
)

// writeTemp creates a sibling temp file next to filename, lets fill write
// its contents, chmods it to perm, and returns its path ready for a final
// rename. On any failure it removes the temp file itself and returns a
// zero path, so both AtomicCreateFile and AtomicUpdateFile can share one
// cleanup path instead of each carrying its own deferred os.Remove.
func writeTemp(filename string, perm os.FileMode, fill func(tmp *os.File) error) (string, error) {
	dir := filepath.Dir(filename)
	tmpfile, err := os.CreateTemp(dir, fmt.Sprintf(".%s.tmp.*", filepath.Base(filename)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTemporaryFileCreation, err)
	}
	tmpname := tmpfile.Name()

	if err := fill(tmpfile); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpname)
		return "", err
	}
	if err := tmpfile.Close(); err != nil {
		_ = os.Remove(tmpname)
		return "", fmt.Errorf("%w: %w", ErrTemporaryFileClose, err)
	}
	if err := os.Chmod(tmpname, perm); err != nil {
		_ = os.Remove(tmpname)
		return "", fmt.Errorf("%w: %w", ErrTemporaryFileChmod, err)
	}
	return tmpname, nil
}

// AtomicCreateFile creates a file atomically by first writing to a temporary file
// and then renaming it to the desired filename. It fails if filename already
// exists rather than silently overwriting it.
func AtomicCreateFile(filename string, data []byte, perm os.FileMode) error {
	tmpname, err := writeTemp(filename, perm, func(tmp *os.File) error {
		if _, err := tmp.Write(data); err != nil {
			return fmt.Errorf("%w: %w", ErrTemporaryFileWrite, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := unix.Renameat2(unix.AT_FDCWD, tmpname, unix.AT_FDCWD, filename, unix.RENAME_NOREPLACE); err != nil {
		_ = os.Remove(tmpname)
		if errors.Is(err, syscall.EEXIST) {
			return fmt.Errorf("%w: %s", ErrFileAlreadyExists, filename)
		}
		return fmt.Errorf("%w: %w", ErrAtomicRename, err)
	}
	return nil
}

// AtomicUpdateFile replaces the content of filename with data atomically by
// writing data to a temporary file and renaming it over the original. The
// original content is left untouched on any failure before the rename.
func AtomicUpdateFile(filename string, data []byte, perm os.FileMode) error {
	tmpname, err := writeTemp(filename, perm, func(tmp *os.File) error {
		if _, err := tmp.Write(data); err != nil {
			return fmt.Errorf("%w: %w", ErrTemporaryFileWrite, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.Rename(tmpname, filename); err != nil {
		_ = os.Remove(tmpname)
		return fmt.Errorf("%w: %w", ErrAtomicRename, err)
	}
	return nil
}
