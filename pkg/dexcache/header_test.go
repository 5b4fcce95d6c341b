package dexcache_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/dexcache/pkg/dexcache"
)

func TestWriteEmptyHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data@app@foo.apk@classes.dex")

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := dexcache.WriteEmptyHeader(f); err != nil {
		t.Fatalf("WriteEmptyHeader failed: %v", err)
	}

	// Position advanced exactly past the header.
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		t.Fatal(err)
	}

	if pos != dexcache.OptHeaderSize {
		t.Errorf("position after write = %d, want %d", pos, dexcache.OptHeaderSize)
	}

	// File holds exactly the header.
	info, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}

	if info.Size() != dexcache.OptHeaderSize {
		t.Errorf("file size = %d, want %d", info.Size(), dexcache.OptHeaderSize)
	}

	// Payload offset reads back as the header size.
	off, err := dexcache.PayloadOffset(f)
	if err != nil {
		t.Fatal(err)
	}

	if off != dexcache.OptHeaderSize {
		t.Errorf("payload offset = %d, want %d", off, dexcache.OptHeaderSize)
	}
}

func TestWriteEmptyHeaderStubContents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stub")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := dexcache.WriteEmptyHeader(f); err != nil {
		t.Fatal(err)
	}

	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !dexcache.IsStub(data) {
		t.Errorf("written header not recognized as stub: % x", data)
	}

	// Every byte outside the payload-offset field is the fill pattern.
	fill := 0

	for _, b := range data {
		if b == 0xFF {
			fill++
		}
	}

	if fill != dexcache.OptHeaderSize-4 {
		t.Errorf("fill bytes = %d, want %d", fill, dexcache.OptHeaderSize-4)
	}
}

func TestWriteEmptyHeaderWrongPositionPanics(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stub")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.Write([]byte("payload")); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Error("WriteEmptyHeader at non-zero offset did not panic")
		}
	}()

	_ = dexcache.WriteEmptyHeader(f)
}

// shortWriter transfers at most cap bytes, then reports failure.
type shortWriter struct {
	max   int
	err   error
	wrote int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n > w.max-w.wrote {
		n = w.max - w.wrote
	}

	w.wrote += n

	return n, w.err
}

func (w *shortWriter) Seek(offset int64, whence int) (int64, error) {
	return 0, nil
}

func TestWriteEmptyHeaderShortWrite(t *testing.T) {
	t.Parallel()

	diskFull := errors.New("no space left on device")

	tests := []struct {
		name string
		max  int
		err  error
	}{
		{name: "zero bytes with underlying error", max: 0, err: diskFull},
		{name: "partial write with underlying error", max: 16, err: diskFull},
		{name: "partial write without underlying error", max: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := &shortWriter{max: tt.max, err: tt.err}

			err := dexcache.WriteEmptyHeader(w)
			if !errors.Is(err, dexcache.ErrShortHeaderWrite) {
				t.Fatalf("err = %v, want ErrShortHeaderWrite", err)
			}

			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("err = %v, does not wrap underlying %v", err, tt.err)
			}
		})
	}
}

func TestIsStub(t *testing.T) {
	t.Parallel()

	stub := bytes.Repeat([]byte{0xFF}, dexcache.OptHeaderSize)
	stub[8], stub[9], stub[10], stub[11] = dexcache.OptHeaderSize, 0, 0, 0

	tests := []struct {
		name   string
		mutate func([]byte)
		want   bool
	}{
		{name: "fresh stub", mutate: func([]byte) {}, want: true},
		{
			name:   "finalized magic is not a stub",
			mutate: func(h []byte) { copy(h, "dey\n036\x00") },
			want:   false,
		},
		{
			name:   "wrong payload offset is not a stub",
			mutate: func(h []byte) { h[8] = 0 },
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := bytes.Clone(stub)
			tt.mutate(h)

			if got := dexcache.IsStub(h); got != tt.want {
				t.Errorf("IsStub = %v, want %v", got, tt.want)
			}
		})
	}

	if dexcache.IsStub(stub[:dexcache.OptHeaderSize-1]) {
		t.Error("truncated header reported as stub")
	}
}
