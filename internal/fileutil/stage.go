package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// CopyMatching copies the regular files directly inside srcDir whose names
// match pattern (filepath.Match syntax) into dstDir, creating dstDir if
// needed. Each copy keeps the source file's permissions unless opts.Mode
// is set.
//
// With opts.NoClobber, files already present in dstDir are left untouched
// and reported in skipped. copied and skipped hold destination paths in
// lexical order. A failure stops the copy and is returned with the files
// copied so far.
func CopyMatching(srcDir, pattern, dstDir string, opts *CopyFileOptions) (copied, skipped []string, err error) {
	if srcDir == "" {
		return nil, nil, ErrEmptySrc
	}
	if dstDir == "" {
		return nil, nil, ErrEmptyDst
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", srcDir, err)
	}
	if err := EnsureDir(dstDir); err != nil {
		return nil, nil, err
	}

	var o CopyFileOptions
	if opts != nil {
		o = *opts
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		src := filepath.Join(srcDir, name)
		dst := filepath.Join(dstDir, name)

		fileOpts := o
		if fileOpts.Mode == nil {
			info, err := os.Stat(src)
			if err != nil {
				return copied, skipped, fmt.Errorf("stat %s: %w", src, err)
			}
			mode := info.Mode().Perm()
			fileOpts.Mode = &mode
		}

		err := CopyFile(src, dst, &fileOpts)
		switch {
		case err == nil:
			copied = append(copied, dst)
		case o.NoClobber && errors.Is(err, fs.ErrExist):
			skipped = append(skipped, dst)
		default:
			return copied, skipped, fmt.Errorf("copy %s: %w", name, err)
		}
	}
	return copied, skipped, nil
}
