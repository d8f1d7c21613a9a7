// Package intervention implements the per-transaction block-mode state
// machine: the monotonic-additive progression None -> Advisory -> Phase
// -> Immediate driven by the block action, and its resolution into the
// verdict reported to the host at phase boundaries and transaction end.
package intervention

import "github.com/sentrywaf/engine/pkg/types"

// State tracks a single transaction's intervention progress. Build one
// with New for mode None and status 403; a zero State has mode None and
// status 0.
type State struct {
	mode   types.BlockMode
	status int
	flags  types.TxFlag
}

// New returns a State with the default block status (403) and mode
// None.
func New() *State {
	return &State{status: 403}
}

// Mode returns the current block mode.
func (s *State) Mode() types.BlockMode { return s.mode }

// Status returns the current block_status value.
func (s *State) Status() int { return s.status }

// Flags returns the transaction flag bits set by intervention
// transitions (BLOCK_ADVISORY / BLOCK_PHASE / BLOCK_IMMEDIATE).
func (s *State) Flags() types.TxFlag { return s.flags }

// SetStatus sets tx.block_status, as driven by the "status" action. It
// is independent of block mode; callers validate the [200,600) range
// before calling (the "status" action creation function is the
// enforcement point, per spec).
func (s *State) SetStatus(code int) { s.status = code }

// Block transitions the state machine per a "block <mode>" action.
// Transitions are monotonic-additive: a later "advisory" can never
// clear a previously recorded "immediate". Each mode sets its own
// transaction flag bit in addition to (not instead of) any bits already
// set by a prior, stronger transition.
func (s *State) Block(mode types.BlockMode) {
	switch mode {
	case types.BlockModeAdvisory:
		s.flags |= types.TxFlagBlockAdvisory
	case types.BlockModePhase:
		s.flags |= types.TxFlagBlockPhase
	case types.BlockModeImmediate:
		s.flags |= types.TxFlagBlockImmediate
	}
	if mode > s.mode {
		s.mode = mode
	}
}

// StopFurtherRules reports whether the rule harness must stop
// processing additional rules in the current transaction: true once
// BLOCK_IMMEDIATE has been set.
func (s *State) StopFurtherRules() bool {
	return s.flags.Has(types.TxFlagBlockImmediate)
}

// EndOfPhase reports whether the current phase must complete without
// starting another: true once BLOCK_PHASE or BLOCK_IMMEDIATE is set.
func (s *State) EndOfPhase() bool {
	return s.flags.Has(types.TxFlagBlockPhase) || s.flags.Has(types.TxFlagBlockImmediate)
}

// Resolve computes the verdict reported to the host, applying
// Immediate > Phase > Advisory precedence.
func (s *State) Resolve() types.Intervention {
	switch {
	case s.flags.Has(types.TxFlagBlockImmediate):
		return types.Intervention{Action: types.InterventionBlock, Status: s.status}
	case s.flags.Has(types.TxFlagBlockPhase):
		return types.Intervention{Action: types.InterventionBlock, Status: s.status}
	case s.flags.Has(types.TxFlagBlockAdvisory):
		return types.Intervention{Action: types.InterventionAdvise, Status: s.status}
	default:
		return types.Intervention{Action: types.InterventionNone, Status: s.status}
	}
}
