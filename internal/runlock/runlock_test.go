//go:build unix

package runlock

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestAcquire_Exclusive(t *testing.T) {
	t.Parallel()

	path := PathFor(filepath.Join(t.TempDir(), "healthcare.db"))
	first, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if _, err := Acquire(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire() error = %v, want ErrLocked", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("second Release() error = %v", err)
	}

	again, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	_ = again.Release()
}

func TestRelease_Nil(t *testing.T) {
	t.Parallel()

	var l *Lock
	if err := l.Release(); err != nil {
		t.Fatalf("nil Release() = %v", err)
	}
}
