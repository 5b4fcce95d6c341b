package dexcache

import "os"

// Keys consulted through a [LookupFunc] when resolving a [Policy].
const (
	// EnvSystemRoot names the read-only system partition root.
	EnvSystemRoot = "ANDROID_ROOT"

	// EnvDataRoot names the writable data partition root.
	EnvDataRoot = "ANDROID_DATA"

	// EnvCacheRoot names the dedicated cache partition root.
	EnvCacheRoot = "ANDROID_CACHE"

	// PropDataOnly forces system-partition artifacts to cache under the
	// data root. Asserted when the value is exactly "1".
	PropDataOnly = "dalvik.vm.dexopt-data-only"

	// PropCacheOnly forces all artifacts to cache under the cache root.
	// Asserted when the value is exactly "1"; wins over [PropDataOnly].
	PropCacheOnly = "dalvik.vm.dexopt-cache-only"
)

// LookupFunc resolves an environment or system-property key.
// The boolean reports whether the key was present.
//
// Injecting the lookup keeps naming deterministic under test; production
// callers typically use [OSLookup] or a config-backed lookup.
type LookupFunc func(key string) (string, bool)

// OSLookup returns a [LookupFunc] backed by the process environment.
// System-property keys resolve like any other key, so hosts without an
// Android property service can export them as plain variables.
func OSLookup() LookupFunc {
	return os.LookupEnv
}

// MapLookup returns a [LookupFunc] backed by a fixed map.
// A nil map behaves as an empty one (every key absent).
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]

		return v, ok
	}
}
