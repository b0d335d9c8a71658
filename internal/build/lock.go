package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Lock is an advisory, whole-build exclusive lock at .ditto/_lock,
// grounded on the flock(2) pattern: one process at a time drives a
// build directory, so two concurrent `ditto compile` invocations never
// race on the same .ast/.ast-exports outputs or the package-set hash.
type Lock struct {
	path string
	file *os.File
	held bool
}

// NewLock returns a Lock for the given build directory's lock file,
// creating the directory if necessary. It does not acquire the lock.
func NewLock(buildDir string) (*Lock, error) {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating build directory %s: %w", buildDir, err)
	}
	return &Lock{path: filepath.Join(buildDir, "_lock")}, nil
}

// ErrLockHeld is returned by Acquire when another process already holds
// the build lock.
type ErrLockHeld struct {
	Path    string
	Session string // the other invocation's session ID, if recorded
}

func (e *ErrLockHeld) Error() string {
	if e.Session == "" {
		return fmt.Sprintf("build directory is locked by another process (%s)", e.Path)
	}
	return fmt.Sprintf("build directory is locked by another process (%s, session %s)", e.Path, e.Session)
}

// Acquire takes a non-blocking exclusive flock on the lock file and
// stamps it with session, the calling invocation's ID, so a rejected
// second Acquire can report whose session holds the lock. The caller
// must Release it when the build finishes, even on error paths.
func (l *Lock) Acquire(session string) error {
	if l.held {
		return nil
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("opening lock file %s: %w", l.path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		held, _ := os.ReadFile(l.path)
		f.Close()
		if err == syscall.EWOULDBLOCK {
			return &ErrLockHeld{Path: l.path, Session: strings.TrimSpace(string(held))}
		}
		return fmt.Errorf("acquiring lock %s: %w", l.path, err)
	}
	if err := f.Truncate(0); err == nil {
		f.WriteAt([]byte(session), 0)
	}
	l.file = f
	l.held = true
	return nil
}

// Release drops the lock. Safe to call on an unheld lock.
func (l *Lock) Release() error {
	if !l.held || l.file == nil {
		return nil
	}
	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	l.file = nil
	l.held = false
	if err != nil {
		return fmt.Errorf("releasing lock %s: %w", l.path, err)
	}
	return nil
}

// Held reports whether this Lock value currently holds the flock.
func (l *Lock) Held() bool { return l.held }
