// Package kvstore implements the collection store: a pluggable,
// content-addressed key/value backend (filesystem, bbolt, redis),
// wrapped with merge-on-read semantics and an optional AES-256-GCM
// encryption layer.
//
// The filesystem backend matches the reference on-disk layout bit for
// bit: every write under a key lands in a new, never-rewritten file
// named <expiration>-<created-sec>-<created-usec>.<type>.<suffix>
// inside that key's directory, and Get discards (and best-effort
// removes) expired entries as it enumerates.
package kvstore
