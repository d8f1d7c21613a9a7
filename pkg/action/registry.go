// Package action implements the action core: a registry of named,
// pluggable actions, each with an optional creation phase (parameters
// -> opaque instance data) and a required execution phase (instance
// data + rule + transaction context -> side effect).
package action

import (
	"sync"

	"github.com/sentrywaf/engine/pkg/dpi"
	"github.com/sentrywaf/engine/pkg/event"
	"github.com/sentrywaf/engine/pkg/intervention"
	"github.com/sentrywaf/engine/pkg/types"
)

// InstanceFlags are per-instance flags computed at creation time.
type InstanceFlags uint32

const (
	// FlagExpand marks an instance whose parameters contain a
	// %{...} reference that must be re-expanded on every execution
	// rather than cached as a literal.
	FlagExpand InstanceFlags = 1 << iota
)

// CreateFunc parses the human-facing parameter string for an action
// into opaque instance data and instance flags. Actions with no
// creation-time state (e.g. "event") pass a nil CreateFunc.
type CreateFunc func(params string) (data interface{}, flags InstanceFlags, err error)

// ExecuteFunc runs the action's side effect against a transaction.
type ExecuteFunc func(data interface{}, rule *Rule, ctx *ExecContext, flags InstanceFlags) error

// Def is a registered action: its execution function is mandatory, its
// creation function optional.
type Def struct {
	Name    string
	Create  CreateFunc
	Execute ExecuteFunc
}

// Rule carries the subset of rule metadata the action core consumes.
// The full rule object (matching operators, etc.) is out of scope;
// this is exactly what setvar/event/block/status read.
type Rule struct {
	ID         string
	Msg        string
	Data       string
	Confidence int
	Severity   int
	Tags       []string
	ExpandMsg  bool
	ExpandData bool
}

// ExecContext bundles the per-transaction state an action instance may
// read or mutate.
type ExecContext struct {
	DPI          *dpi.DPI
	Intervention *intervention.State
	Events       *event.Sink
	TxFlags      *types.TxFlag
}

// Instance pairs a Def with its parameter-derived data and flags.
type Instance struct {
	def   *Def
	Data  interface{}
	Flags InstanceFlags
}

// Execute runs the instance's action against ctx on behalf of rule.
func (i *Instance) Execute(rule *Rule, ctx *ExecContext) error {
	return i.def.Execute(i.Data, rule, ctx, i.Flags)
}

// Name returns the underlying action's registered name.
func (i *Instance) Name() string { return i.def.Name }

// Registry holds the process-wide action vocabulary. It is read-mostly:
// populated during configuration, then frozen for the engine's
// lifetime.
type Registry struct {
	mu      sync.RWMutex
	defs    map[string]*Def
	frozen  bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds a new action definition. Duplicate names fail with
// Exists; registering after Freeze fails with Invalid.
func (r *Registry) Register(def Def) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return types.NewError(types.Invalid, "action registry frozen: cannot register %q", def.Name)
	}
	if _, exists := r.defs[def.Name]; exists {
		return types.NewError(types.Exists, "action %q already registered", def.Name)
	}
	if def.Execute == nil {
		return types.NewError(types.Invalid, "action %q missing execute function", def.Name)
	}
	d := def
	r.defs[def.Name] = &d
	return nil
}

// Freeze stops further registration. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup finds a registered action definition by name.
func (r *Registry) Lookup(name string) (*Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// NewInstance creates an action instance by name, running its creation
// function (if any) against params.
func (r *Registry) NewInstance(name, params string) (*Instance, error) {
	def, ok := r.Lookup(name)
	if !ok {
		return nil, types.NewError(types.Invalid, "unknown action %q", name)
	}
	if def.Create == nil {
		return &Instance{def: def}, nil
	}
	data, flags, err := def.Create(params)
	if err != nil {
		return nil, err
	}
	return &Instance{def: def, Data: data, Flags: flags}, nil
}

// RegisterCoreActions registers the five built-in actions: setflag,
// setvar, event, block, status.
func RegisterCoreActions(r *Registry) error {
	for _, def := range coreActionDefs() {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}
