// Package dpi implements the data-provider interface: the ordered,
// case-insensitive name-to-field map scoped to a single transaction.
package dpi

import (
	"strings"
	"sync"

	"github.com/sentrywaf/engine/pkg/field"
	"github.com/sentrywaf/engine/pkg/types"
)

// DPI is the per-transaction field store. A transaction owns exactly
// one DPI; it is not shared across transactions. The zero value is not
// usable, use New.
type DPI struct {
	mu     sync.Mutex
	order  []string          // original-case names, insertion order
	lookup map[string]int    // lowercase name -> index into order
	fields map[string]*field.Field // lowercase name -> field
}

// New creates an empty DPI.
func New() *DPI {
	return &DPI{
		lookup: make(map[string]int),
		fields: make(map[string]*field.Field),
	}
}

// Add appends field f to the map under its own name. Duplicate names
// (case-insensitive) are rejected with Exists; remove then re-add is
// the only way to replace a binding.
func (d *DPI) Add(f *field.Field) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := strings.ToLower(f.Name())
	if _, exists := d.fields[key]; exists {
		return types.NewError(types.Exists, "field %q already bound", f.Name())
	}
	d.order = append(d.order, f.Name())
	d.lookup[key] = len(d.order) - 1
	d.fields[key] = f
	return nil
}

// Get performs a case-insensitive lookup. A nil return with no error
// means the name is unbound (None, not an error).
func (d *DPI) Get(name string) (*field.Field, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.fields[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	return f, nil
}

// Remove deletes and returns the field bound to name, or nil if unbound.
func (d *DPI) Remove(name string) (*field.Field, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := strings.ToLower(name)
	f, ok := d.fields[key]
	if !ok {
		return nil, nil
	}
	delete(d.fields, key)
	idx, ok := d.lookup[key]
	if ok {
		d.order = append(d.order[:idx], d.order[idx+1:]...)
		delete(d.lookup, key)
		// Reindex entries after idx.
		for k, i := range d.lookup {
			if i > idx {
				d.lookup[k] = i - 1
			}
		}
	}
	return f, nil
}

// GetAll returns every bound field in insertion order.
func (d *DPI) GetAll() []*field.Field {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*field.Field, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.fields[strings.ToLower(name)])
	}
	return out
}

// AddNum is a convenience constructor binding a static NUM field.
func (d *DPI) AddNum(name string, n int64) error {
	return d.Add(field.Create(name, types.FieldTypeNum, n))
}

// AddNulStr is a convenience constructor binding a static NULSTR field.
func (d *DPI) AddNulStr(name string, s string) error {
	return d.Add(field.Create(name, types.FieldTypeNulStr, s))
}

// AddList is a convenience constructor binding a static LIST field.
func (d *DPI) AddList(name string, list []*field.Field) error {
	return d.Add(field.Create(name, types.FieldTypeList, list))
}
