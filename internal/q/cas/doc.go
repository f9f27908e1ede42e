// Package cas provides a filesystem-backed, content-addressed record store.
//
// Callers derive a hash from whatever identifies a result (raw bytes, or an ordered list of key parts), then store and later retrieve a small
// JSON record under (namespace, hash). When any input to the hash changes, the lookup simply misses.
//
// Namespaces separate kinds and versions of records (for example, "verdict-v1") and must be filesystem-safe. Records live at:
//
//	<AbsRoot>/<namespace>/<hash[0:2]>/<hash[2:]>
package cas
