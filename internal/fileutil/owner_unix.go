//go:build unix

package fileutil

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// MatchReference gives every path the owner, group and permission bits of
// ref. Every path is attempted; errors are joined.
func MatchReference(ref string, paths []string) error {
	info, err := os.Stat(ref)
	if err != nil {
		return fmt.Errorf("stat reference: %w", err)
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fmt.Errorf("stat reference %s: no ownership information", ref)
	}
	uid, gid := int(st.Uid), int(st.Gid)
	mode := info.Mode().Perm()

	var errs []error
	for _, p := range paths {
		if err := os.Chown(p, uid, gid); err != nil {
			errs = append(errs, fmt.Errorf("chown %s: %w", p, err))
		}
		if err := os.Chmod(p, mode); err != nil {
			errs = append(errs, fmt.Errorf("chmod %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}
