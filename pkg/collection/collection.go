// Package collection implements collection managers: pluggable,
// URI-scheme-keyed handlers that seed a named LIST field at transaction
// start and persist it at transaction close, typically backed by a KV
// store.
package collection

import (
	"strings"

	"github.com/sentrywaf/engine/pkg/arena"
	"github.com/sentrywaf/engine/pkg/dpi"
	"github.com/sentrywaf/engine/pkg/field"
	"github.com/sentrywaf/engine/pkg/types"
)

// RegisterFunc is invoked at configuration time with the declared URI.
// It returns the manager's opaque per-collection instance data, or an
// error with Kind Declined to let the next manager for the scheme try.
type RegisterFunc func(uri string) (interface{}, error)

// UnregisterFunc runs at engine shutdown. Errors are logged, not fatal.
type UnregisterFunc func(inst interface{}) error

// PopulateFunc runs at transaction creation, after the DPI exists. It
// returns the fields to seed the collection with, or Declined to leave
// it empty.
type PopulateFunc func(inst interface{}, d *dpi.DPI) ([]*field.Field, error)

// PersistFunc runs at transaction close with the collection's current
// contents.
type PersistFunc func(inst interface{}, d *dpi.DPI, collection []*field.Field) error

// Manager is one registered collection-manager definition.
type Manager struct {
	Name         string
	Scheme       string
	RegisterFn   RegisterFunc
	UnregisterFn UnregisterFunc
	PopulateFn   PopulateFunc
	PersistFn    PersistFunc
}

// Registry holds the append-only set of registered managers.
type Registry struct {
	managers []Manager
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends m. Registration is append-only: multiple managers
// may share a scheme, and lookup tries them in registration order.
func (r *Registry) Register(m Manager) error {
	if m.RegisterFn == nil {
		return types.NewError(types.Invalid, "collection manager %q missing register_fn", m.Name)
	}
	r.managers = append(r.managers, m)
	return nil
}

func schemeOf(uri string) string {
	if idx := strings.Index(uri, "://"); idx >= 0 {
		return uri[:idx]
	}
	return uri
}

// Binding is the result of configuring a named collection against a
// URI: the manager that accepted it, and the instance data it
// produced.
type Binding struct {
	name    string
	manager Manager
	inst    interface{}
}

// Name returns the collection's configured name.
func (b *Binding) Name() string { return b.name }

// Configure finds the first manager whose scheme matches uri and whose
// RegisterFn does not decline, and binds it to the collection name.
func (r *Registry) Configure(name, uri string) (*Binding, error) {
	scheme := schemeOf(uri)
	for _, m := range r.managers {
		if m.Scheme != scheme {
			continue
		}
		inst, err := m.RegisterFn(uri)
		if err != nil {
			if types.KindOf(err) == types.Declined {
				continue
			}
			return nil, err
		}
		return &Binding{name: name, manager: m, inst: inst}, nil
	}
	return nil, types.NewError(types.Declined, "no collection manager registered for scheme %q", scheme)
}

// Unregister runs the bound manager's UnregisterFn, if any.
func (b *Binding) Unregister() error {
	if b.manager.UnregisterFn == nil {
		return nil
	}
	return b.manager.UnregisterFn(b.inst)
}

// Populate seeds the collection in d by running the bound manager's
// PopulateFn and deep-copying the returned fields into a's scope.
func (b *Binding) Populate(d *dpi.DPI, a *arena.Arena) error {
	if b.manager.PopulateFn == nil {
		return d.AddList(b.name, nil)
	}
	list, err := b.manager.PopulateFn(b.inst, d)
	if err != nil {
		if types.KindOf(err) == types.Declined {
			return d.AddList(b.name, nil)
		}
		return err
	}
	return PopulateFromList(list, d, b.name, a)
}

// PopulateFromList deep-copies each field in list into a's scope and
// binds the copies as a LIST field named name in d.
func PopulateFromList(list []*field.Field, d *dpi.DPI, name string, a *arena.Arena) error {
	copied := make([]*field.Field, len(list))
	for i, f := range list {
		v, err := f.Value()
		if err != nil {
			return err
		}
		copied[i] = field.Create(f.Name(), f.Type(), a.Adopt(v))
	}
	return d.AddList(name, copied)
}

// Persist runs the bound manager's PersistFn against the collection's
// current contents in d. A Declined result and a nil PersistFn are
// both treated as success.
func (b *Binding) Persist(d *dpi.DPI) error {
	if b.manager.PersistFn == nil {
		return nil
	}
	list := b.currentList(d)
	err := b.manager.PersistFn(b.inst, d, list)
	if err != nil && types.KindOf(err) != types.Declined {
		return err
	}
	return nil
}

func (b *Binding) currentList(d *dpi.DPI) []*field.Field {
	f, _ := d.Get(b.name)
	if f == nil {
		return nil
	}
	v, err := f.Value()
	if err != nil {
		return nil
	}
	list, _ := v.([]*field.Field)
	return list
}
