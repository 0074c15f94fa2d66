package bootlock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquire_Exclusive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run", "pgbootstrap.lock")
	ctx := context.Background()

	first, err := Acquire(ctx, path, 0, nil)
	if err != nil {
		t.Fatalf("first Acquire() error: %v", err)
	}
	if first.Path() != path {
		t.Errorf("Path() = %q, want %q", first.Path(), path)
	}

	tests := map[string]time.Duration{
		"fail fast":    0,
		"bounded wait": 100 * time.Millisecond,
	}
	for name, wait := range tests {
		t.Run(name, func(t *testing.T) {
			second, err := Acquire(ctx, path, wait, nil)
			if !errors.Is(err, ErrLocked) {
				second.Release()
				t.Fatalf("error = %v, want %v", err, ErrLocked)
			}
		})
	}

	first.Release()
	first.Release()

	third, err := Acquire(ctx, path, 0, nil)
	if err != nil {
		t.Fatalf("Acquire() after Release error: %v", err)
	}
	third.Release()
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pgbootstrap.lock")
	ctx := context.Background()

	first, err := Acquire(ctx, path, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	time.AfterFunc(50*time.Millisecond, first.Release)

	second, err := Acquire(ctx, path, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	second.Release()
}

func TestAcquire_ContextCanceled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pgbootstrap.lock")
	held, err := Acquire(context.Background(), path, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer held.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Acquire(ctx, path, time.Second, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want %v", err, context.Canceled)
	}
	if errors.Is(err, ErrLocked) {
		t.Error("cancellation must not be reported as a held lock")
	}
}

func TestRelease_Nil(t *testing.T) {
	t.Parallel()

	var l *Lock
	l.Release()
}
