package action

import (
	"testing"

	"github.com/sentrywaf/engine/pkg/dpi"
	"github.com/sentrywaf/engine/pkg/event"
	"github.com/sentrywaf/engine/pkg/intervention"
	"github.com/sentrywaf/engine/pkg/types"
)

func newTestContext() *ExecContext {
	var flags types.TxFlag
	return &ExecContext{
		DPI:          dpi.New(),
		Intervention: intervention.New(),
		Events:       event.NewSink(),
		TxFlags:      &flags,
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	if err := RegisterCoreActions(r); err != nil {
		t.Fatalf("RegisterCoreActions() error = %v", err)
	}
	return r
}

func TestRegisterDuplicateNameFailsExists(t *testing.T) {
	r := newTestRegistry(t)
	err := r.Register(Def{Name: "setflag", Execute: executeSetflag})
	if types.KindOf(err) != types.Exists {
		t.Fatalf("Register() kind = %v, want Exists", types.KindOf(err))
	}
}

func TestRegisterAfterFreezeFailsInvalid(t *testing.T) {
	r := NewRegistry()
	r.Freeze()
	err := r.Register(Def{Name: "x", Execute: executeSetflag})
	if types.KindOf(err) != types.Invalid {
		t.Fatalf("Register() after freeze kind = %v, want Invalid", types.KindOf(err))
	}
}

// S1 — setvar numeric.
func TestSetvarNumericAccumulation(t *testing.T) {
	r := newTestRegistry(t)
	ctx := newTestContext()

	inst, err := r.NewInstance("setvar", "counter=0")
	if err != nil {
		t.Fatalf("NewInstance(setvar, counter=0) error = %v", err)
	}
	if err := inst.Execute(&Rule{}, ctx); err != nil {
		t.Fatalf("Execute(counter=0) error = %v", err)
	}

	for i := 0; i < 3; i++ {
		inst, err := r.NewInstance("setvar", "counter=+1")
		if err != nil {
			t.Fatalf("NewInstance(setvar, counter=+1) error = %v", err)
		}
		if err := inst.Execute(&Rule{}, ctx); err != nil {
			t.Fatalf("Execute(counter=+1) error = %v", err)
		}
	}

	f, _ := ctx.DPI.Get("counter")
	if f == nil {
		t.Fatal("counter field missing")
	}
	v, _ := f.Value()
	if v.(int64) != 3 {
		t.Fatalf("counter = %v, want 3", v)
	}
}

// S2 — setvar string with expansion.
func TestSetvarStringWithExpansion(t *testing.T) {
	r := newTestRegistry(t)
	ctx := newTestContext()
	_ = ctx.DPI.AddNulStr("user", "alice")

	inst, err := r.NewInstance("setvar", "greeting=hello %{user}")
	if err != nil {
		t.Fatalf("NewInstance() error = %v", err)
	}
	if inst.Flags&FlagExpand == 0 {
		t.Fatal("expected FlagExpand to be set for templated value")
	}
	if err := inst.Execute(&Rule{}, ctx); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	f, _ := ctx.DPI.Get("greeting")
	if f == nil {
		t.Fatal("greeting field missing")
	}
	v, _ := f.Value()
	if string(v.([]byte)) != "hello alice" {
		t.Fatalf("greeting = %q, want %q", v, "hello alice")
	}
}

// Round-trip: setvar X=5; setvar X=+3; get(X) -> 8.
func TestSetvarNumaddAfterNumset(t *testing.T) {
	r := newTestRegistry(t)
	ctx := newTestContext()

	inst, _ := r.NewInstance("setvar", "x=5")
	_ = inst.Execute(&Rule{}, ctx)
	inst, _ = r.NewInstance("setvar", "x=+3")
	if err := inst.Execute(&Rule{}, ctx); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	f, _ := ctx.DPI.Get("x")
	v, _ := f.Value()
	if v.(int64) != 8 {
		t.Fatalf("x = %v, want 8", v)
	}
}

// Round-trip: setvar X=hello; setvar X=world; get(X) -> "world".
func TestSetvarStrsetReplaces(t *testing.T) {
	r := newTestRegistry(t)
	ctx := newTestContext()

	inst, _ := r.NewInstance("setvar", "x=hello")
	_ = inst.Execute(&Rule{}, ctx)
	inst, _ = r.NewInstance("setvar", "x=world")
	_ = inst.Execute(&Rule{}, ctx)

	f, _ := ctx.DPI.Get("x")
	v, _ := f.Value()
	if string(v.([]byte)) != "world" {
		t.Fatalf("x = %q, want %q", v, "world")
	}
}

func TestSetvarNumaddWithoutExistingBindingIsInvalid(t *testing.T) {
	r := newTestRegistry(t)
	ctx := newTestContext()

	inst, err := r.NewInstance("setvar", "missing=+1")
	if err != nil {
		t.Fatalf("NewInstance() error = %v", err)
	}
	err = inst.Execute(&Rule{}, ctx)
	if types.KindOf(err) != types.Invalid {
		t.Fatalf("Execute() kind = %v, want Invalid", types.KindOf(err))
	}
}

func TestSetvarEmptyNameOrValueFailsAtCreation(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.NewInstance("setvar", "=value"); types.KindOf(err) != types.Invalid {
		t.Fatalf("empty name kind = %v, want Invalid", types.KindOf(err))
	}
	if _, err := r.NewInstance("setvar", "name="); types.KindOf(err) != types.Invalid {
		t.Fatalf("empty value kind = %v, want Invalid", types.KindOf(err))
	}
}

// S3 — setflag suspicious.
func TestSetflagSuspiciousAndUnknown(t *testing.T) {
	r := newTestRegistry(t)
	ctx := newTestContext()

	inst, err := r.NewInstance("setflag", "suspicious")
	if err != nil {
		t.Fatalf("NewInstance() error = %v", err)
	}
	if err := inst.Execute(&Rule{}, ctx); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !ctx.TxFlags.Has(types.TxFlagSuspicious) {
		t.Fatal("FSUSPICIOUS not set")
	}
	if len(ctx.DPI.GetAll()) != 0 {
		t.Fatal("setflag must not mutate DPI")
	}

	inst, _ = r.NewInstance("setflag", "xyzzy")
	err = inst.Execute(&Rule{}, ctx)
	if types.KindOf(err) != types.Invalid {
		t.Fatalf("Execute(xyzzy) kind = %v, want Invalid", types.KindOf(err))
	}
}

// S4 — block precedence.
func TestBlockPrecedenceSequence(t *testing.T) {
	r := newTestRegistry(t)
	ctx := newTestContext()

	for _, mode := range []string{"advisory", "phase", "immediate"} {
		inst, err := r.NewInstance("block", mode)
		if err != nil {
			t.Fatalf("NewInstance(block, %s) error = %v", mode, err)
		}
		if err := inst.Execute(&Rule{}, ctx); err != nil {
			t.Fatalf("Execute(block %s) error = %v", mode, err)
		}
	}

	v := ctx.Intervention.Resolve()
	if v.Action != types.InterventionBlock {
		t.Fatalf("Resolve().Action = %v, want Block", v.Action)
	}
	if !ctx.Intervention.StopFurtherRules() {
		t.Fatal("expected StopFurtherRules() true after immediate block")
	}
}

// S5 — status bounds.
func TestStatusBounds(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.NewInstance("status", "404"); err != nil {
		t.Fatalf("status 404 error = %v, want Ok", err)
	}
	if _, err := r.NewInstance("status", "199"); types.KindOf(err) != types.Invalid {
		t.Fatalf("status 199 kind = %v, want Invalid", types.KindOf(err))
	}
	if _, err := r.NewInstance("status", "600"); types.KindOf(err) != types.Invalid {
		t.Fatalf("status 600 kind = %v, want Invalid", types.KindOf(err))
	}
	if _, err := r.NewInstance("status", "599"); err != nil {
		t.Fatalf("status 599 error = %v, want Ok", err)
	}
}

func TestEventPushesObservationWithExpandedMessage(t *testing.T) {
	r := newTestRegistry(t)
	ctx := newTestContext()
	_ = ctx.DPI.AddNulStr("user", "bob")

	inst, err := r.NewInstance("event", "")
	if err != nil {
		t.Fatalf("NewInstance() error = %v", err)
	}
	rule := &Rule{ID: "r1", Msg: "blocked %{user}", ExpandMsg: true, Confidence: 80, Severity: 50, Tags: []string{"sqli"}}
	if err := inst.Execute(rule, ctx); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if ctx.Events.Len() != 1 {
		t.Fatalf("Events().Len() = %d, want 1", ctx.Events.Len())
	}
	got := ctx.Events.Events()[0]
	if got.Message != "blocked bob" {
		t.Fatalf("Message = %q, want %q", got.Message, "blocked bob")
	}
	if len(got.Tags) != 1 || got.Tags[0] != "sqli" {
		t.Fatalf("Tags = %v, want [sqli]", got.Tags)
	}
}
