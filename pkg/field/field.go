// Package field implements the typed value cell used throughout the
// engine's data-provider interface: a Field has an immutable name and
// type, and one of three storage disciplines (static, alias, dynamic).
//
// The dynamic discipline mirrors a pattern the engine borrows from its
// health-check status tracking: a value computed on demand that, once
// observed, may be pinned so later reads stop recomputing it. Here that
// pin is permanent and one-directional: MakeStatic collapses a dynamic
// field to static exactly once, never back.
package field

import (
	"github.com/sentrywaf/engine/pkg/types"
)

// Getter produces a field's value on demand. arg is the
// qualifier string passed by %{NAME:arg} expansion or by callers of
// ValueEx; unqualified reads pass an empty arg.
type Getter func(f *Field, arg string) (interface{}, error)

// Setter writes through a dynamic field. Fields created without one
// reject Setv with Invalid.
type Setter func(f *Field, arg string, value interface{}) error

type discipline int

const (
	disciplineStatic discipline = iota
	disciplineAlias
	disciplineDynamic
)

// Field is a named, typed value cell. The zero value is not usable;
// build one with the constructors below.
type Field struct {
	name string
	typ  types.FieldType

	disc discipline

	// static
	value interface{}

	// alias: slot is a pointer to caller-owned storage, e.g. *int64,
	// *string, *[]byte. Value()/Setv() dereference it directly.
	slot interface{}

	// dynamic
	getter Getter
	setter Setter
	// getterCalls counts invocations for the "invoked exactly once"
	// testable property; harmless in production, cheap to keep.
	getterCalls int
}

// Name returns the field's immutable name.
func (f *Field) Name() string { return f.name }

// Type returns the field's immutable type tag.
func (f *Field) Type() types.FieldType { return f.typ }

// GetterCalls returns how many times the dynamic getter has fired.
// Meaningful only for dynamic fields; zero otherwise.
func (f *Field) GetterCalls() int { return f.getterCalls }

// Create builds a static field, copying inputValue in by holding the
// Go value directly (Go values are not aliasable the way C buffers are,
// so "copy" here means "field owns this value").
func Create(name string, typ types.FieldType, inputValue interface{}) *Field {
	return &Field{name: name, typ: typ, disc: disciplineStatic, value: inputValue}
}

// CreateAlias builds a field whose slot is a pointer into caller-owned
// storage. Value() dereferences it; Setv() writes through it.
func CreateAlias(name string, typ types.FieldType, slot interface{}) *Field {
	return &Field{name: name, typ: typ, disc: disciplineAlias, slot: slot}
}

// CreateByteStrAlias is the specialised byte-string alias constructor:
// slot aliases an external buffer without copying.
func CreateByteStrAlias(name string, externalBuffer []byte) *Field {
	buf := externalBuffer
	return CreateAlias(name, types.FieldTypeByteStr, &buf)
}

// CreateDynamic builds a field backed by a getter (required) and an
// optional setter. The getter runs on every Value/ValueEx call until
// MakeStatic pins the last produced value.
func CreateDynamic(name string, typ types.FieldType, getter Getter, setter Setter) *Field {
	return &Field{name: name, typ: typ, disc: disciplineDynamic, getter: getter, setter: setter}
}

// Value reads the field with no qualifier argument.
func (f *Field) Value() (interface{}, error) {
	return f.ValueEx("")
}

// ValueEx reads the field, passing arg to the getter for dynamic
// fields. Static and alias fields ignore arg.
func (f *Field) ValueEx(arg string) (interface{}, error) {
	switch f.disc {
	case disciplineStatic:
		return f.value, nil
	case disciplineAlias:
		return derefSlot(f.slot), nil
	case disciplineDynamic:
		f.getterCalls++
		v, err := f.getter(f, arg)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, types.NewError(types.Invalid, "field %q: unknown discipline", f.name)
	}
}

// Setv writes a new value into the field. The discipline determines
// storage: static replaces the owned value, alias writes through the
// slot, dynamic calls the setter (Invalid if none was registered).
func (f *Field) Setv(value interface{}) error {
	switch f.disc {
	case disciplineStatic:
		f.value = value
		return nil
	case disciplineAlias:
		return setSlot(f.slot, value)
	case disciplineDynamic:
		if f.setter == nil {
			return types.NewError(types.Invalid, "field %q: dynamic field has no setter", f.name)
		}
		return f.setter(f, "", value)
	default:
		return types.NewError(types.Invalid, "field %q: unknown discipline", f.name)
	}
}

// MakeStatic collapses a dynamic field to static, caching the value
// produced by one final getter invocation. Subsequent reads return the
// cached value without invoking the getter. Calling MakeStatic on an
// already-static or alias field is a no-op: the transition is
// dynamic -> static exactly once, never the reverse.
func (f *Field) MakeStatic() error {
	if f.disc != disciplineDynamic {
		return nil
	}
	v, err := f.Value()
	if err != nil {
		return err
	}
	f.disc = disciplineStatic
	f.value = v
	f.getter = nil
	f.setter = nil
	return nil
}

func derefSlot(slot interface{}) interface{} {
	switch p := slot.(type) {
	case *int64:
		return *p
	case *uint64:
		return *p
	case *float64:
		return *p
	case *string:
		return *p
	case *[]byte:
		return *p
	default:
		return slot
	}
}

func setSlot(slot interface{}, value interface{}) error {
	switch p := slot.(type) {
	case *int64:
		v, ok := value.(int64)
		if !ok {
			return types.NewError(types.Invalid, "alias type mismatch: want int64")
		}
		*p = v
	case *uint64:
		v, ok := value.(uint64)
		if !ok {
			return types.NewError(types.Invalid, "alias type mismatch: want uint64")
		}
		*p = v
	case *float64:
		v, ok := value.(float64)
		if !ok {
			return types.NewError(types.Invalid, "alias type mismatch: want float64")
		}
		*p = v
	case *string:
		v, ok := value.(string)
		if !ok {
			return types.NewError(types.Invalid, "alias type mismatch: want string")
		}
		*p = v
	case *[]byte:
		v, ok := value.([]byte)
		if !ok {
			return types.NewError(types.Invalid, "alias type mismatch: want []byte")
		}
		*p = v
	default:
		return types.NewError(types.Invalid, "alias slot of unsupported type %T", slot)
	}
	return nil
}
