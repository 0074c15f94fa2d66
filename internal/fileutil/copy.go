package fileutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/giantswarm/pgbootstrap/internal/sentinel"
)

// ErrEmptySrc is returned when a source path is empty.
const ErrEmptySrc = sentinel.Error("source path must not be empty")

// ErrEmptyDst is returned when a destination path is empty.
const ErrEmptyDst = sentinel.Error("destination path must not be empty")

// ErrConflictingOptions is returned when NoClobber and Atomic are combined.
const ErrConflictingOptions = sentinel.Error("no-clobber and atomic copies are mutually exclusive")

// DefaultFileMode is used when CopyFileOptions.Mode is nil and there is no
// source file to inherit a mode from.
const DefaultFileMode os.FileMode = 0o644

// CopyFileOptions configures file copy behavior.
type CopyFileOptions struct {
	Mode      *os.FileMode // Permissions of the created file; nil uses DefaultFileMode
	Sync      bool         // fsync dst before closing
	Atomic    bool         // Write to a temp file in dst's directory, then rename
	NoClobber bool         // Fail with an fs.ErrExist error if dst exists
}

// CopyFile copies src to dst, creating dst's parent directories as needed.
// A nil opts copies with DefaultFileMode and no sync.
//
// Copying a file onto itself (including through a symlinked directory) is
// a no-op. With NoClobber, an existing dst is reported as an error matching
// fs.ErrExist and left untouched.
func CopyFile(src, dst string, opts *CopyFileOptions) (retErr error) {
	if src == "" {
		return ErrEmptySrc
	}
	if dst == "" {
		return ErrEmptyDst
	}

	srcFile, err := os.Open(src) //nolint:gosec // G304: paths are from controlled sources
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if closeErr := srcFile.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close source: %w", closeErr)
		}
	}()

	if same, err := sameFile(srcFile, dst); err != nil {
		return err
	} else if same {
		return nil
	}

	return writeFile(dst, srcFile, opts)
}

// WriteFileAtomic replaces path with data via a synced temp file and a
// rename, so readers see either the old or the new content. The file is
// created with mode perm.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyDst
	}
	return writeFile(path, bytes.NewReader(data), &CopyFileOptions{Mode: &perm, Atomic: true})
}

// writeFile streams r into dst according to opts.
func writeFile(dst string, r io.Reader, opts *CopyFileOptions) (retErr error) {
	var o CopyFileOptions
	if opts != nil {
		o = *opts
	}
	if o.NoClobber && o.Atomic {
		return ErrConflictingOptions
	}

	if err := EnsureDirForFile(dst); err != nil {
		return fmt.Errorf("prepare destination: %w", err)
	}

	mode := DefaultFileMode
	if o.Mode != nil {
		mode = *o.Mode
	}

	dstFile, writePath, err := openDst(dst, mode, o)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = os.Remove(writePath)
		}
	}()

	if _, err := io.Copy(dstFile, r); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("copy: %w", err)
	}

	// fsync before rename; otherwise a crash can leave the renamed file
	// with incomplete contents.
	if o.Sync || o.Atomic {
		if err := dstFile.Sync(); err != nil {
			_ = dstFile.Close()
			return fmt.Errorf("sync: %w", err)
		}
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	if writePath != dst {
		if err := os.Rename(writePath, dst); err != nil {
			return fmt.Errorf("rename temp file to destination: %w", err)
		}
	}
	return nil
}

// openDst opens the file the data is written to and returns its path. For
// atomic writes that is a temp file next to dst. The mode is applied
// explicitly so the umask cannot widen or narrow it.
func openDst(dst string, mode os.FileMode, o CopyFileOptions) (*os.File, string, error) {
	if o.Atomic {
		tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-"+filepath.Base(dst)+"-*")
		if err != nil {
			return nil, "", fmt.Errorf("create temp file: %w", err)
		}
		if err := tmp.Chmod(mode); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return nil, "", fmt.Errorf("chmod temp file: %w", err)
		}
		return tmp, tmp.Name(), nil
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if o.NoClobber {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(dst, flags, mode) //nolint:gosec // G304: paths are from controlled sources
	if err != nil {
		return nil, "", fmt.Errorf("create destination: %w", err)
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("chmod destination: %w", err)
	}
	return f, dst, nil
}

// sameFile reports whether dst already is the file open as src.
func sameFile(src *os.File, dst string) (bool, error) {
	srcInfo, err := src.Stat()
	if err != nil {
		return false, fmt.Errorf("stat source: %w", err)
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return false, nil
	}
	return os.SameFile(srcInfo, dstInfo), nil
}
