//go:build !unix

package fileutil

import (
	"errors"
	"fmt"
	"os"
)

// MatchReference gives every path the permission bits of ref. Ownership
// is not portable outside unix and is left unchanged.
func MatchReference(ref string, paths []string) error {
	info, err := os.Stat(ref)
	if err != nil {
		return fmt.Errorf("stat reference: %w", err)
	}
	var errs []error
	for _, p := range paths {
		if err := os.Chmod(p, info.Mode().Perm()); err != nil {
			errs = append(errs, fmt.Errorf("chmod %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}
