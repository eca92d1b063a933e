//go:build linux || darwin

// Package lock implements the lockfile that prevents overlapping sync passes against the
// same spreadsheet and table.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

var ErrLocked = errors.New("sync already in progress")

// Lock is an exclusive advisory lock on a file, held until Release.
type Lock struct {
	file *os.File
}

// Acquire takes a non-blocking exclusive flock on the file, creating it if necessary. The
// process ID is written to the file for information.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to open lockfile %v (%w)", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()

		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w (%v)", ErrLocked, path)
		}

		return nil, fmt.Errorf("unable to lock %v (%w)", path, err)
	}

	if err := f.Truncate(0); err == nil {
		fmt.Fprintf(f, "%d\n", os.Getpid())
	}

	return &Lock{
		file: f,
	}, nil
}

// Release unlocks and closes the lockfile. The file itself is left in place so that a
// concurrent Acquire never locks an unlinked inode.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	defer func() {
		l.file.Close()
		l.file = nil
	}()

	return unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
}
