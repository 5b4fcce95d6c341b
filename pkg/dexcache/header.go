package dexcache

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Optimized-DEX header layout.
//
// The finalizer overwrites the whole record once the payload is known;
// the stub written here only guarantees the record's total size and the
// position of the payload-offset field. All multi-byte fields are
// little-endian.
const (
	// OptHeaderSize is the fixed size of the header record. The payload
	// format requires 64-bit alignment, so this must stay a multiple
	// of 8.
	OptHeaderSize = 40

	offOptMagic   = 0x00 // [8]byte, written at finalization
	offDexOffset  = 0x08 // uint32, file offset where payload begins
	offDexLength  = 0x0C // uint32
	offDepsOffset = 0x10 // uint32
	offDepsLength = 0x14 // uint32
	offOptOffset  = 0x18 // uint32
	offOptLength  = 0x1C // uint32
	offFlags      = 0x20 // uint32
	offChecksum   = 0x24 // uint32
)

// stubFill marks not-yet-finalized header bytes.
const stubFill = 0xFF

// Compile-time check that the header satisfies the 8-byte alignment
// requirement; a non-multiple size makes this constant negative.
const _ uint = -(OptHeaderSize % 8)

// WriteEmptyHeader writes the header stub at the start of a new cache
// file: every byte is [stubFill] except the payload-offset field, which
// holds [OptHeaderSize] so readers can locate the payload before the
// real header exists.
//
// f must be positioned at offset 0; any other position is a caller
// contract violation and panics. The record is written with a single
// Write call, leaving the position exactly past the header, ready for
// the payload.
//
// Possible errors:
//   - [ErrShortHeaderWrite]: fewer than [OptHeaderSize] bytes were
//     transferred, wrapping the underlying I/O error if there was one
func WriteEmptyHeader(f io.WriteSeeker) error {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err == nil && pos != 0 {
		panic(fmt.Sprintf("dexcache: WriteEmptyHeader at offset %d, want 0", pos))
	}

	var hdr [OptHeaderSize]byte
	for i := range hdr {
		hdr[i] = stubFill
	}

	binary.LittleEndian.PutUint32(hdr[offDexOffset:], OptHeaderSize)

	n, err := f.Write(hdr[:])
	if n != OptHeaderSize {
		if err != nil {
			return fmt.Errorf("%w: wrote %d of %d bytes: %w", ErrShortHeaderWrite, n, OptHeaderSize, err)
		}

		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortHeaderWrite, n, OptHeaderSize)
	}

	return nil
}

// PayloadOffset reads back the payload-offset field from a cache file.
// It works on stubs and finalized headers alike; for a stub it returns
// [OptHeaderSize].
func PayloadOffset(r io.ReaderAt) (uint32, error) {
	var field [4]byte

	_, err := r.ReadAt(field[:], offDexOffset)
	if err != nil {
		return 0, fmt.Errorf("read payload offset: %w", err)
	}

	return binary.LittleEndian.Uint32(field[:]), nil
}

// IsStub reports whether header holds an unfinalized stub: every byte is
// [stubFill] except the payload-offset field, which holds the header
// size. header must be at least [OptHeaderSize] bytes; extra bytes are
// ignored.
func IsStub(header []byte) bool {
	if len(header) < OptHeaderSize {
		return false
	}

	if binary.LittleEndian.Uint32(header[offDexOffset:]) != OptHeaderSize {
		return false
	}

	for i := 0; i < OptHeaderSize; i++ {
		if i >= offDexOffset && i < offDexOffset+4 {
			continue
		}

		if header[i] != stubFill {
			return false
		}
	}

	return true
}
