package diagnostics

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/giantswarm/pgbootstrap/internal/command"
)

func TestShellQuote(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want string
	}{
		"plain path":   {in: "/var/lib/postgresql/data", want: "'/var/lib/postgresql/data'"},
		"spaces":       {in: "/tmp/my data", want: "'/tmp/my data'"},
		"single quote": {in: "/tmp/it's", want: `'/tmp/it'\''s'`},
		"empty":        {in: "", want: "''"},
		"dollar and *": {in: "/tmp/$HOME/*", want: "'/tmp/$HOME/*'"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := ShellQuote(tc.in); got != tc.want {
				t.Errorf("ShellQuote(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestConfDumpArgs_ExpandsGlobOnly(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "it's data")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"postgresql.conf": "listen_addresses = '*'\n",
		"pg_hba.conf":     "local all all trust\n",
		"PG_VERSION":      "16\n",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	args := ConfDumpArgs(dir)
	if _, err := exec.LookPath(args[0]); err != nil {
		t.Skip("bash not available")
	}
	out, err := exec.Command(args[0], args[1:]...).Output()
	if err != nil {
		t.Fatalf("run %q: %v", args, err)
	}
	want := "local all all trust\nlisten_addresses = '*'\n"
	if string(out) != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestDumper_Dump(t *testing.T) {
	t.Parallel()

	const dir = "/var/lib/postgresql/data"
	listLine := "ls -l " + dir
	dumpLine := "bash -c cat '" + dir + "'/*.conf"

	tests := map[string]struct {
		script  func(r *command.Recorder)
		wantErr []string
	}{
		"both succeed": {
			script: func(*command.Recorder) {},
		},
		"listing fails": {
			script:  func(r *command.Recorder) { r.ExitWith(listLine, 2) },
			wantErr: []string{"list data directory"},
		},
		"dump fails": {
			script:  func(r *command.Recorder) { r.ExitWith(dumpLine, 1) },
			wantErr: []string{"dump config files"},
		},
		"both fail": {
			script: func(r *command.Recorder) {
				r.ExitWith(listLine, 2)
				r.ExitWith(dumpLine, 1)
			},
			wantErr: []string{"list data directory", "dump config files"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := command.NewRecorder()
			tc.script(rec)
			d := &Dumper{Exec: rec, DataDir: dir}

			err := d.Dump(context.Background())

			if got := rec.CommandLines(); !slices.Equal(got, []string{listLine, dumpLine}) {
				t.Errorf("commands = %q, want both to run", got)
			}
			if len(tc.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, command.ErrCommandFailed) {
				t.Fatalf("error = %v, want a command failure", err)
			}
			for _, want := range tc.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestProcessTree(t *testing.T) {
	t.Parallel()

	rec := command.NewRecorder()
	if err := ProcessTree(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec.ExitWith("pstree -ahltpu", 127)
	err := ProcessTree(context.Background(), rec)
	if !errors.Is(err, command.ErrCommandFailed) {
		t.Fatalf("error = %v, want a command failure", err)
	}
	if got := rec.Count("pstree -ahltpu"); got != 2 {
		t.Errorf("pstree ran %d times, want 2", got)
	}
}
