package dexcache

import (
	"fmt"
	"os"
	"strings"
)

// MaxPathLen is the maximum length in bytes of any assembled path, at
// every composition stage. Exceeding it fails with [ErrPathTooLong].
const MaxPathLen = 511

// DefaultMemberName is the archive member cached when the input is a
// .jar/.apk and the caller does not name one.
const DefaultMemberName = "classes.dex"

// Separator is the path separator replaced during flattening. Cache
// naming operates on slash-separated paths regardless of host OS.
const Separator = '/'

// FlatSeparator replaces [Separator] in every position after the first.
const FlatSeparator = '@'

// Namer computes cache-file names.
//
// The zero value is not usable; construct with [NewNamer] for a
// production Namer, or fill the fields directly in tests. Namer holds no
// mutable state and is safe for concurrent use.
type Namer struct {
	// Lookup resolves environment and property keys for [Policy]
	// construction. Required for [Namer.CacheFileName].
	Lookup LookupFunc

	// Getwd resolves the working directory when the input path is
	// relative. Required for [Namer.Canonicalize].
	Getwd func() (string, error)
}

// NewNamer returns a Namer backed by the process environment and
// working directory.
func NewNamer() *Namer {
	return &Namer{
		Lookup: OSLookup(),
		Getwd:  os.Getwd,
	}
}

// Canonicalize turns an input path plus an optional archive member name
// into a single flattened absolute path:
//
//	Canonicalize("/data/app/foo.apk", "classes.dex")
//	  => "/data@app@foo.apk@classes.dex"
//
// Relative paths are prefixed with the working directory. The member
// name, if non-empty, is appended with a separator before flattening.
// Flattening leaves the leading separator untouched and replaces every
// later separator with [FlatSeparator]; no other bytes change, so the
// result is deterministic for identical inputs.
//
// Possible errors:
//   - [ErrEnvironment]: relative input and Getwd failed
//   - [ErrPathTooLong]: assembled path exceeds [MaxPathLen]
func (n *Namer) Canonicalize(path string, member string) (string, error) {
	abs := path

	if len(path) == 0 || path[0] != Separator {
		wd, err := n.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrEnvironment, err)
		}

		abs = wd + string(Separator) + path
	}

	if member != "" {
		abs += string(Separator) + member
	}

	if len(abs) > MaxPathLen {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrPathTooLong, len(abs), MaxPathLen)
	}

	return flatten(abs), nil
}

// flatten replaces every separator after index 0 with [FlatSeparator].
// Already-flat strings pass through unchanged.
func flatten(abs string) string {
	if !strings.ContainsRune(abs[1:], Separator) {
		return abs
	}

	b := []byte(abs)
	for i := 1; i < len(b); i++ {
		if b[i] == Separator {
			b[i] = FlatSeparator
		}
	}

	return string(b)
}

// SelectRoot picks the cache root for a flattened absolute path.
//
// The candidate starts as the data root. Paths prefixed by the system
// root move to the cache root unless [Policy.DataOnly] is set, and
// [Policy.CacheOnly] forces the cache root regardless. The prefix test
// is a plain string-prefix match, not a path-component match; that is
// the selection contract consumers depend on.
//
// SelectRoot never fails: absent roots silently fall back to the
// package defaults.
func SelectRoot(flat string, policy Policy) string {
	policy = policy.withDefaults()

	root := policy.DataRoot

	if strings.HasPrefix(flat, policy.SystemRoot) && !policy.DataOnly {
		root = policy.CacheRoot
	}

	if policy.CacheOnly {
		root = policy.CacheRoot
	}

	return root
}

// CacheFilePath composes the final cache-file path for a flattened
// absolute path under the given root:
//
//	{root}/dalvik-cache{flat}
//
// flat must begin with a separator (as produced by [Namer.Canonicalize]),
// so none is inserted after [CacheSubdir]. Fails with [ErrPathTooLong]
// if the composed path exceeds [MaxPathLen].
func CacheFilePath(root string, flat string) (string, error) {
	p := root + string(Separator) + CacheSubdir + flat

	if len(p) > MaxPathLen {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrPathTooLong, len(p), MaxPathLen)
	}

	return p, nil
}

// CacheFileName maps an input file to its cache-file path, running the
// full pipeline: canonicalize, resolve policy through the lookup, select
// a root, compose.
//
// member may be empty (a bare .dex file) or name an archive entry; pass
// [DefaultMemberName] for ordinary .jar/.apk inputs.
//
// Possible errors:
//   - [ErrEnvironment]: relative input and Getwd failed
//   - [ErrPathTooLong]: any composition stage exceeds [MaxPathLen]
func (n *Namer) CacheFileName(path string, member string) (string, error) {
	flat, err := n.Canonicalize(path, member)
	if err != nil {
		return "", err
	}

	root := SelectRoot(flat, PolicyFromLookup(n.Lookup))

	return CacheFilePath(root, flat)
}
