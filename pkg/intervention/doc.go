// Package intervention tracks the per-transaction block-mode state
// machine described in the engine's intervention design: a
// monotonic-additive progression through None, Advisory, Phase, and
// Immediate, resolved into a host-facing verdict with Immediate taking
// precedence over Phase over Advisory.
package intervention
