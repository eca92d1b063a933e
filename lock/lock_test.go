//go:build linux || darwin

package lock

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestAcquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Unexpected error acquiring lock (%v)", err)
	}

	if _, err := Acquire(path); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked acquiring held lock, got %v", err)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Unexpected error releasing lock (%v)", err)
	}

	l, err = Acquire(path)
	if err != nil {
		t.Fatalf("Unexpected error reacquiring lock (%v)", err)
	}

	l.Release()
}

func TestReleaseNil(t *testing.T) {
	var l *Lock

	if err := l.Release(); err != nil {
		t.Errorf("Unexpected error releasing nil lock (%v)", err)
	}
}
