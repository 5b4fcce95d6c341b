// Package dexcache computes canonical cache-file names for optimized DEX
// artifacts and stakes out new cache files with a placeholder header.
//
// The package has two independent halves:
//
//   - Naming: [Namer.CacheFileName] turns the path of a .jar/.apk/.dex
//     file (plus an optional archive member name) into the flat,
//     collision-free path of its cache file under a policy-selected
//     root, e.g. /data/dalvik-cache/data@app@foo.apk@classes.dex.
//
//   - Header staking: [WriteEmptyHeader] writes a fixed-size stub at the
//     start of a freshly created cache file so later readers can tell
//     where the payload begins before the real header exists.
//
// Both halves are stateless. The environment/property lookup and the
// working-directory resolver are injectable, so naming is fully
// deterministic under test. The package never opens, creates, or closes
// files; callers own the file handle and its exclusive-creation
// semantics.
package dexcache
