// Package types defines the shared value types used across the engine:
// field type tags, error kinds, transaction flags, and the intervention
// verdict reported to the host adapter.
//
// These types have no behavior of their own; they exist so that
// pkg/field, pkg/dpi, pkg/action, pkg/intervention and pkg/engine share
// one vocabulary, and pkg/types itself imports none of them.
package types
