package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// FileLock provides exclusive file-based locking using flock. Commands
// hold it on "<inventory>.lock" while they read, reconcile and rewrite an
// inventory so concurrent runs against the same file serialize.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created if it doesn't exist.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// LockFor returns the lock guarding the inventory at inventoryPath.
func LockFor(inventoryPath string) *FileLock {
	return NewFileLock(inventoryPath + ".lock")
}

// Lock acquires an exclusive lock on the file.
// Blocks until the lock is acquired.
func (l *FileLock) Lock() error {
	return l.lock(syscall.LOCK_EX)
}

// TryLock acquires the lock without blocking. Returns false if another
// process holds it.
func (l *FileLock) TryLock() (bool, error) {
	err := l.lock(syscall.LOCK_EX | syscall.LOCK_NB)
	if err == syscall.EWOULDBLOCK {
		return false, nil
	}
	return err == nil, err
}

func (l *FileLock) lock(how int) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		if err == syscall.EWOULDBLOCK {
			return err
		}
		return fmt.Errorf("lock %s: %w", l.path, err)
	}

	l.file = f
	return nil
}

// Unlock releases the lock and closes the file.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		l.file = nil
		return err
	}

	err := l.file.Close()
	l.file = nil
	return err
}
