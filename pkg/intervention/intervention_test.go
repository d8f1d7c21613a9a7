package intervention

import (
	"testing"

	"github.com/sentrywaf/engine/pkg/types"
)

func TestDefaultStateIsNoneWith403(t *testing.T) {
	s := New()
	if s.Mode() != types.BlockModeNone {
		t.Fatalf("Mode() = %v, want None", s.Mode())
	}
	if s.Status() != 403 {
		t.Fatalf("Status() = %d, want 403", s.Status())
	}
	v := s.Resolve()
	if v.Action != types.InterventionNone {
		t.Fatalf("Resolve().Action = %v, want None", v.Action)
	}
}

// S4 — block precedence.
func TestBlockPrecedenceAdvisoryPhaseImmediate(t *testing.T) {
	s := New()
	s.Block(types.BlockModeAdvisory)
	s.Block(types.BlockModePhase)
	s.Block(types.BlockModeImmediate)

	if !s.Flags().Has(types.TxFlagBlockAdvisory) || !s.Flags().Has(types.TxFlagBlockPhase) || !s.Flags().Has(types.TxFlagBlockImmediate) {
		t.Fatalf("Flags() = %b, want all three bits set", s.Flags())
	}
	if !s.StopFurtherRules() {
		t.Fatal("StopFurtherRules() = false, want true after immediate block")
	}
	v := s.Resolve()
	if v.Action != types.InterventionBlock {
		t.Fatalf("Resolve().Action = %v, want Block", v.Action)
	}
}

func TestLaterAdvisoryCannotClearPriorImmediate(t *testing.T) {
	s := New()
	s.Block(types.BlockModeImmediate)
	s.Block(types.BlockModeAdvisory)

	if s.Mode() != types.BlockModeImmediate {
		t.Fatalf("Mode() = %v, want still Immediate", s.Mode())
	}
	if !s.StopFurtherRules() {
		t.Fatal("StopFurtherRules() = false, want true")
	}
}

func TestPhaseAloneBlocksButDoesNotStopFurtherRules(t *testing.T) {
	s := New()
	s.Block(types.BlockModePhase)

	if s.StopFurtherRules() {
		t.Fatal("StopFurtherRules() = true, want false (only Immediate stops rules)")
	}
	if !s.EndOfPhase() {
		t.Fatal("EndOfPhase() = false, want true")
	}
	v := s.Resolve()
	if v.Action != types.InterventionBlock {
		t.Fatalf("Resolve().Action = %v, want Block", v.Action)
	}
}

func TestAdvisoryAloneAdvisesAndContinues(t *testing.T) {
	s := New()
	s.Block(types.BlockModeAdvisory)

	if s.EndOfPhase() {
		t.Fatal("EndOfPhase() = true, want false for advisory-only")
	}
	v := s.Resolve()
	if v.Action != types.InterventionAdvise {
		t.Fatalf("Resolve().Action = %v, want Advise", v.Action)
	}
}
