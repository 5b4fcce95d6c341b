package dexcache

import "errors"

// Sentinel errors returned by dexcache operations.
//
// Callers should use [errors.Is] to check error types:
//
//	if errors.Is(err, dexcache.ErrPathTooLong) {
//	    // reject the input file; do not cache under a truncated key
//	}
var (
	// ErrEnvironment indicates the working directory could not be
	// determined while making a relative input path absolute.
	ErrEnvironment = errors.New("dexcache: working directory unavailable")

	// ErrPathTooLong indicates an assembled path exceeds [MaxPathLen].
	//
	// Returned instead of truncating: a truncated cache name is a
	// different key and would silently collide with other inputs.
	ErrPathTooLong = errors.New("dexcache: path too long")

	// ErrShortHeaderWrite indicates the header stub write transferred
	// fewer bytes than [OptHeaderSize]. The cache file is unusable and
	// should be discarded by the caller.
	ErrShortHeaderWrite = errors.New("dexcache: incomplete header write")
)
