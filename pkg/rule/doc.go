// Package rule implements the phase-driven rule harness described in
// package rule.go: matching is delegated to pkg/matcher, execution to
// pkg/action, and intervention short-circuiting to pkg/intervention.
// The harness itself holds no state beyond the rules it was given.
package rule
