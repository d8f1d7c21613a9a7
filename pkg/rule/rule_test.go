package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentrywaf/engine/pkg/action"
	"github.com/sentrywaf/engine/pkg/dpi"
	"github.com/sentrywaf/engine/pkg/event"
	"github.com/sentrywaf/engine/pkg/intervention"
	"github.com/sentrywaf/engine/pkg/matcher"
	"github.com/sentrywaf/engine/pkg/types"
)

func newCtx() *action.ExecContext {
	var flags types.TxFlag
	return &action.ExecContext{
		DPI:          dpi.New(),
		Intervention: intervention.New(),
		Events:       event.NewSink(),
		TxFlags:      &flags,
	}
}

func newRegistry(t *testing.T) *action.Registry {
	t.Helper()
	r := action.NewRegistry()
	if err := action.RegisterCoreActions(r); err != nil {
		t.Fatalf("RegisterCoreActions() error = %v", err)
	}
	return r
}

func TestRunPhaseMatchesAndExecutesInOrder(t *testing.T) {
	reg := newRegistry(t)
	ctx := newCtx()
	_ = ctx.DPI.AddNulStr("uri", "/admin/union select 1")

	m, _ := matcher.New("literal")
	pat, _ := m.Compile("union select")

	inst, _ := reg.NewInstance("setflag", "suspicious")
	h := NewHarness(nil)
	h.AddRule(&Rule{
		Rule:    action.Rule{ID: "r1"},
		Phase:   "request",
		Target:  "uri",
		Matcher: m,
		Pattern: pat,
		Actions: []*action.Instance{inst},
	})

	stopped, err := h.RunPhase("request", ctx.DPI, ctx)
	require.NoError(t, err)
	assert.False(t, stopped, "expected RunPhase() not to stop")
	assert.True(t, ctx.TxFlags.Has(types.TxFlagSuspicious), "expected suspicious flag to be set")
}

func TestRunPhaseSkipsNonMatchingRule(t *testing.T) {
	reg := newRegistry(t)
	ctx := newCtx()
	_ = ctx.DPI.AddNulStr("uri", "/harmless")

	m, _ := matcher.New("literal")
	pat, _ := m.Compile("union select")
	inst, _ := reg.NewInstance("setflag", "suspicious")

	h := NewHarness(nil)
	h.AddRule(&Rule{Rule: action.Rule{ID: "r1"}, Phase: "request", Target: "uri", Matcher: m, Pattern: pat, Actions: []*action.Instance{inst}})

	if _, err := h.RunPhase("request", ctx.DPI, ctx); err != nil {
		t.Fatalf("RunPhase() error = %v", err)
	}
	if ctx.TxFlags.Has(types.TxFlagSuspicious) {
		t.Fatal("expected suspicious flag not to be set")
	}
}

func TestRunPhaseStopsAfterImmediateBlock(t *testing.T) {
	reg := newRegistry(t)
	ctx := newCtx()

	blockInst, _ := reg.NewInstance("block", "immediate")
	flagInst, _ := reg.NewInstance("setflag", "suspicious")

	h := NewHarness(nil)
	h.AddRule(&Rule{Rule: action.Rule{ID: "r1"}, Phase: "request", Actions: []*action.Instance{blockInst}})
	h.AddRule(&Rule{Rule: action.Rule{ID: "r2"}, Phase: "request", Actions: []*action.Instance{flagInst}})

	stopped, err := h.RunPhase("request", ctx.DPI, ctx)
	if err != nil {
		t.Fatalf("RunPhase() error = %v", err)
	}
	if !stopped {
		t.Fatal("expected RunPhase() to report stopped after immediate block")
	}
	if ctx.TxFlags.Has(types.TxFlagSuspicious) {
		t.Fatal("second rule must not have run after immediate block")
	}
}

func TestRunPhaseActionErrorDoesNotBlockSiblingActions(t *testing.T) {
	reg := newRegistry(t)
	ctx := newCtx()

	badSetvar, err := reg.NewInstance("setvar", "missing=+1")
	if err != nil {
		t.Fatalf("NewInstance() error = %v", err)
	}
	blockInst, _ := reg.NewInstance("block", "advisory")

	h := NewHarness(nil)
	h.AddRule(&Rule{Rule: action.Rule{ID: "r1"}, Phase: "request", Actions: []*action.Instance{badSetvar, blockInst}})

	if _, err := h.RunPhase("request", ctx.DPI, ctx); err != nil {
		t.Fatalf("RunPhase() error = %v", err)
	}
	if ctx.Intervention.Resolve().Action != types.InterventionAdvise {
		t.Fatal("expected advisory block to still apply after sibling action error")
	}
}
