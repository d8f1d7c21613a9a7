// Package matcher implements the pluggable pattern-matching layer used
// by rule operators: a string-keyed provider registry (literal
// substring, PCRE via dlclark/regexp2, and a cached multi-pattern
// "ac" provider), each compiling patterns to an opaque handle that can
// be matched against a raw buffer or a field's BYTESTR/NULSTR value.
package matcher

import (
	"github.com/sentrywaf/engine/pkg/field"
	"github.com/sentrywaf/engine/pkg/types"
)

// Pattern is an opaque, provider-specific compiled pattern handle.
type Pattern interface{}

// Provider compiles patterns and matches them against raw buffers. A
// provider is selected by string key at matcher-creation time and
// never changes afterward.
type Provider interface {
	Compile(patt string) (Pattern, error)
	MatchBuf(p Pattern, data []byte) (bool, error)
}

var providers = map[string]Provider{}

// Register binds a provider to key. Registration is expected to
// happen during process init, before any Matcher is created.
func Register(key string, p Provider) {
	providers[key] = p
}

// Matcher is bound to one named provider, selected once at creation.
type Matcher struct {
	key      string
	provider Provider
}

// New looks up the provider registered under key.
func New(key string) (*Matcher, error) {
	p, ok := providers[key]
	if !ok {
		return nil, types.NewError(types.NotFound, "matcher: no provider registered for key %q", key)
	}
	return &Matcher{key: key, provider: p}, nil
}

// Key returns the provider key this matcher was created with.
func (m *Matcher) Key() string { return m.key }

// Compile turns patt into an opaque Pattern handle via the bound
// provider.
func (m *Matcher) Compile(patt string) (Pattern, error) {
	return m.provider.Compile(patt)
}

// MatchBuf matches a compiled pattern against a raw buffer.
func (m *Matcher) MatchBuf(p Pattern, data []byte) (bool, error) {
	return m.provider.MatchBuf(p, data)
}

// MatchField matches a compiled pattern against a field's value.
// Only BYTESTR and NULSTR fields can be matched directly; any other
// type is Invalid, matching the reference matcher's "not matching
// against field type" limitation for numeric fields.
func (m *Matcher) MatchField(p Pattern, f *field.Field) (bool, error) {
	v, err := f.Value()
	if err != nil {
		return false, err
	}
	switch f.Type() {
	case types.FieldTypeByteStr:
		return m.provider.MatchBuf(p, v.([]byte))
	case types.FieldTypeNulStr:
		return m.provider.MatchBuf(p, []byte(v.(string)))
	default:
		return false, types.NewError(types.Invalid, "matcher: cannot match against field type %s", f.Type())
	}
}
