// Package fs provides the small filesystem surface dexcache needs, behind
// an interface so commands can run against a fake in tests.
//
// The main types are:
//   - [FS]: interface for path-based filesystem operations
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using the [os] package
//
// Cache files are staked with exclusive creation ([FS.CreateExclusive])
// and guarded with an flock while the header stub is written
// ([TakeFlock]), mirroring how dexopt serializes writers on a cache file.
package fs

import (
	"io"
	"os"
)

// File represents an open file descriptor.
//
// Satisfied by [os.File]; usable with all stdlib functions that accept
// [io.Reader], [io.Writer], [io.Seeker], or [io.ReaderAt].
type File interface {
	io.ReadWriteCloser
	io.Seeker
	io.ReaderAt

	// Fd returns the file descriptor. See [os.File.Fd].
	// Used for flock on the cache file while staking it.
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error
}

// FS defines the filesystem operations used by the dexcache commands.
//
// All methods mirror their [os] package equivalents.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// OpenFile opens a file with the given flags and permissions.
	// See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// CreateExclusive creates a new file, failing with [os.ErrExist] if
	// the path already exists (O_CREATE|O_EXCL). This is the
	// create-if-absent primitive that keeps concurrent stakers from
	// clobbering each other's cache file.
	CreateExclusive(path string, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically via temp file +
	// rename, so readers never observe a partial file.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error
}

// Compile-time interface checks.
var (
	_ File = (*os.File)(nil)
	_ FS   = (*Real)(nil)
)
