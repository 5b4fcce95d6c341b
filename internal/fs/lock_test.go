package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/dexcache/internal/fs"
)

func TestTakeFlock(t *testing.T) {
	t.Parallel()

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "cachefile")

	f, err := real.CreateExclusive(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	lock, err := fs.TakeFlock(f)
	if err != nil {
		t.Fatalf("TakeFlock failed: %v", err)
	}

	if err := lock.Close(); err != nil {
		t.Fatalf("releasing lock failed: %v", err)
	}

	// Close is idempotent.
	if err := lock.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	// Lock can be re-taken after release.
	lock, err = fs.TakeFlock(f)
	if err != nil {
		t.Fatalf("re-taking lock failed: %v", err)
	}

	_ = lock.Close()
}

func TestTakeFlockContention(t *testing.T) {
	t.Parallel()

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "cachefile")

	f1, err := real.CreateExclusive(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f1.Close()

	lock, err := fs.TakeFlock(f1)
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Close()

	// flock is per open file description: a second descriptor for the
	// same inode contends with the first within one process too.
	f2, err := real.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer f2.Close()

	_, err = fs.TakeFlock(f2)
	if !errors.Is(err, fs.ErrWouldBlock) {
		t.Fatalf("second flock err = %v, want ErrWouldBlock", err)
	}
}
