// Package kvstore implements the content-addressed key/value store used
// to back managed collections: a merge-on-read wrapper around a
// pluggable backend (filesystem, bbolt, redis), each of which may
// return more than one candidate value for a key.
package kvstore

import (
	"time"

	"github.com/sentrywaf/engine/pkg/types"
)

// Value is one stored record: an opaque byte payload tagged with a
// free-form type string, plus the timestamps the filesystem backend's
// on-disk format preserves verbatim.
type Value struct {
	Type       string
	Data       []byte
	Created    time.Time
	Expiration time.Time // zero means no expiry
}

// Backend is the interface a concrete store implements. Get may return
// more than one Value for a key (e.g. a backend that keeps every
// write); the merge policy decides what a multi-value Get means.
type Backend interface {
	Connect() error
	Disconnect() error
	Get(key string) ([]*Value, error)
	Set(key string, v *Value) error
	Remove(key string) error
}

// MergePolicy reduces a multi-value Get result to one Value.
type MergePolicy func(values []*Value) (*Value, error)

// DefaultMergePolicy takes the first value, matching the reference
// backend's "most recently written wins" ordering.
func DefaultMergePolicy(values []*Value) (*Value, error) {
	if len(values) == 0 {
		return nil, types.NewError(types.NotFound, "no candidate values")
	}
	return values[0], nil
}

// Store wraps a Backend with merge-on-read: Get only consults the merge
// policy when the backend returns more than one value, and skips it
// entirely for the 0- and 1-value cases.
type Store struct {
	backend Backend
	merge   MergePolicy
}

// New wraps backend with merge, defaulting to DefaultMergePolicy.
func New(backend Backend, merge MergePolicy) *Store {
	if merge == nil {
		merge = DefaultMergePolicy
	}
	return &Store{backend: backend, merge: merge}
}

// Connect opens the backend.
func (s *Store) Connect() error { return s.backend.Connect() }

// Disconnect closes the backend.
func (s *Store) Disconnect() error { return s.backend.Disconnect() }

// Get fetches the value at key, applying the merge policy only when the
// backend reports more than one candidate. A key with no values is
// NotFound.
func (s *Store) Get(key string) (*Value, error) {
	values, err := s.backend.Get(key)
	if err != nil {
		return nil, err
	}
	switch len(values) {
	case 0:
		return nil, types.NewError(types.NotFound, "key %q not found", key)
	case 1:
		return values[0], nil
	default:
		return s.merge(values)
	}
}

// Set writes v under key. The merge policy is not consulted on write.
func (s *Store) Set(key string, v *Value) error { return s.backend.Set(key, v) }

// Remove deletes every value stored under key.
func (s *Store) Remove(key string) error { return s.backend.Remove(key) }
