package dexcache

// Default roots used when the corresponding lookup key is absent.
const (
	DefaultSystemRoot = "/system"
	DefaultDataRoot   = "/data"
	DefaultCacheRoot  = "/cache"
)

// CacheSubdir is the fixed directory name, directly under the selected
// root, that holds all cache files.
const CacheSubdir = "dalvik-cache"

// Policy holds the resolved inputs for cache-root selection.
//
// Construct it with [PolicyFromLookup], or fill it directly in tests.
// Empty root fields fall back to the package defaults during selection,
// so the zero value selects roots exactly like an empty environment.
type Policy struct {
	// SystemRoot is the read-only partition prefix. Artifacts whose
	// flattened path starts with it are redirected to CacheRoot unless
	// DataOnly is set.
	SystemRoot string

	// DataRoot hosts cache files for ordinary writable-partition inputs.
	DataRoot string

	// CacheRoot hosts cache files for system-partition inputs, and for
	// everything when CacheOnly is set.
	CacheRoot string

	// DataOnly keeps system-partition artifacts under DataRoot.
	DataOnly bool

	// CacheOnly forces every artifact under CacheRoot. Wins over DataOnly.
	CacheOnly bool
}

// PolicyFromLookup resolves a Policy through the given lookup.
//
// Root keys ([EnvSystemRoot], [EnvDataRoot], [EnvCacheRoot]) that are
// absent stay empty and default during selection. The two property keys
// assert their flag only when the value is exactly "1".
func PolicyFromLookup(lookup LookupFunc) Policy {
	var p Policy

	if v, ok := lookup(EnvSystemRoot); ok {
		p.SystemRoot = v
	}

	if v, ok := lookup(EnvDataRoot); ok {
		p.DataRoot = v
	}

	if v, ok := lookup(EnvCacheRoot); ok {
		p.CacheRoot = v
	}

	if v, ok := lookup(PropDataOnly); ok {
		p.DataOnly = v == "1"
	}

	if v, ok := lookup(PropCacheOnly); ok {
		p.CacheOnly = v == "1"
	}

	return p
}

// withDefaults returns p with empty root fields replaced by the package
// defaults. Selection always runs on a fully defaulted policy; there is
// no state where a root is undefined.
func (p Policy) withDefaults() Policy {
	if p.SystemRoot == "" {
		p.SystemRoot = DefaultSystemRoot
	}

	if p.DataRoot == "" {
		p.DataRoot = DefaultDataRoot
	}

	if p.CacheRoot == "" {
		p.CacheRoot = DefaultCacheRoot
	}

	return p
}
