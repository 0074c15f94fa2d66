package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func seedDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "postgresql.conf", "shared_buffers = 128MB\n", 0o600)
	writeTestFile(t, dir, "pg_hba.conf", "host all all all md5\n", 0o640)
	writeTestFile(t, dir, "PG_VERSION", "16\n", 0o600)
	if err := os.Mkdir(filepath.Join(dir, "conf.d.conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestCopyMatching_Stage(t *testing.T) {
	t.Parallel()

	src := seedDataDir(t)
	staging := filepath.Join(t.TempDir(), "pgconfbackup")

	copied, skipped, err := CopyMatching(src, "*.conf", staging, nil)
	if err != nil {
		t.Fatalf("CopyMatching() error: %v", err)
	}

	want := []string{filepath.Join(staging, "pg_hba.conf"), filepath.Join(staging, "postgresql.conf")}
	if !slices.Equal(copied, want) {
		t.Errorf("copied = %q, want %q", copied, want)
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %q, want none", skipped)
	}
	if got := modeOf(t, filepath.Join(staging, "pg_hba.conf")); got != 0o640 {
		t.Errorf("staged mode = %o, want source mode 0640", got)
	}
	if _, err := os.Stat(filepath.Join(staging, "PG_VERSION")); !os.IsNotExist(err) {
		t.Error("non-matching file was copied")
	}
	if _, err := os.Stat(filepath.Join(staging, "conf.d.conf")); !os.IsNotExist(err) {
		t.Error("directory matching the pattern was copied")
	}
	// Copy, not move.
	if got := readFile(t, filepath.Join(src, "postgresql.conf")); got != "shared_buffers = 128MB\n" {
		t.Errorf("source changed: %q", got)
	}
}

func TestCopyMatching_NoClobberRestore(t *testing.T) {
	t.Parallel()

	staging := t.TempDir()
	writeTestFile(t, staging, "postgresql.conf", "staged settings\n", 0o600)
	writeTestFile(t, staging, "pg_hba.conf", "staged hba\n", 0o600)

	dataDir := t.TempDir()
	writeTestFile(t, dataDir, "postgresql.conf", "restored from backup\n", 0o644)

	copied, skipped, err := CopyMatching(staging, "*.conf", dataDir, &CopyFileOptions{NoClobber: true})
	if err != nil {
		t.Fatalf("CopyMatching() error: %v", err)
	}

	if got := readFile(t, filepath.Join(dataDir, "postgresql.conf")); got != "restored from backup\n" {
		t.Errorf("existing file overwritten: %q", got)
	}
	if got := readFile(t, filepath.Join(dataDir, "pg_hba.conf")); got != "staged hba\n" {
		t.Errorf("missing file not restored: %q", got)
	}
	if !slices.Equal(copied, []string{filepath.Join(dataDir, "pg_hba.conf")}) {
		t.Errorf("copied = %q", copied)
	}
	if !slices.Equal(skipped, []string{filepath.Join(dataDir, "postgresql.conf")}) {
		t.Errorf("skipped = %q", skipped)
	}
}

func TestCopyMatching_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		src, pattern, dst string
		want              error
	}{
		"empty source":      {pattern: "*.conf", dst: "/tmp", want: ErrEmptySrc},
		"empty destination": {src: "/tmp", pattern: "*.conf", want: ErrEmptyDst},
		"bad pattern":       {src: "/tmp", pattern: "[", dst: "/tmp"},
		"missing source":    {src: "/nonexistent/pgdata", pattern: "*.conf", dst: "/tmp"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := CopyMatching(tc.src, tc.pattern, tc.dst, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCopyMatching_NoMatches(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "staging")
	copied, skipped, err := CopyMatching(t.TempDir(), "*.conf", dst, nil)
	if err != nil {
		t.Fatalf("CopyMatching() error: %v", err)
	}
	if len(copied)+len(skipped) != 0 {
		t.Errorf("copied = %q, skipped = %q; want none", copied, skipped)
	}
	if info, err := os.Stat(dst); err != nil || !info.IsDir() {
		t.Errorf("destination not created: %v", err)
	}
}
