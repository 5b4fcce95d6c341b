package fs

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned by [TakeFlock] when another process already
// holds a lock on the file.
var ErrWouldBlock = errors.New("lock would block")

// Flock is a held flock(2) on an open file. Call [Flock.Close] to
// release it before closing the file.
type Flock struct {
	mu    sync.Mutex
	fd    int
	flock func(fd int, how int) error
}

// TakeFlock acquires a non-blocking exclusive flock on an already-open
// file, typically a cache file that was just created exclusively and is
// about to receive its header stub.
//
// flock is advisory and applies to the open descriptor, so the lock is
// only meaningful between cooperating processes (dexopt-style writers).
// Returns [ErrWouldBlock] if another process holds the lock.
func TakeFlock(f File) (*Flock, error) {
	fd := int(f.Fd())

	err := flockRetryEINTR(unix.Flock, fd, unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrWouldBlock
		}

		return nil, fmt.Errorf("flock: %w", err)
	}

	return &Flock{fd: fd, flock: unix.Flock}, nil
}

// Close releases the lock. Idempotent; subsequent calls return nil.
//
// Closing the locked file also releases the flock, so an error here
// usually only matters if the descriptor stays open afterwards.
func (l *Flock) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.flock == nil {
		return nil
	}

	err := flockRetryEINTR(l.flock, l.fd, unix.LOCK_UN)
	l.flock = nil

	if err != nil {
		return fmt.Errorf("unlocking flock: %w", err)
	}

	return nil
}

// flockRetryEINTR calls flock, retrying while it is interrupted by a
// signal.
func flockRetryEINTR(flock func(fd int, how int) error, fd int, how int) error {
	for {
		err := flock(fd, how)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
