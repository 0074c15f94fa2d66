// Package fileutil holds the file operations pgbootstrap performs natively
// instead of shelling out: atomic writes of the backup-tool config, the
// *.conf staging copy around the restore, and ownership fix-ups after the
// staged files are put back.
//
// CopyFile and WriteFileAtomic share one write path supporting explicit
// permissions, fsync, temp-file-then-rename and no-clobber creation.
package fileutil
