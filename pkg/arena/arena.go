// Package arena implements the scoped allocation tracker that backs
// per-connection and per-transaction lifetimes in the engine.
//
// Go already garbage-collects, so Arena does not manage raw memory the
// way the C original does. What it preserves is the *scoping contract*:
// every allocation made against an arena is tied to that arena's
// lifetime, a Release walks and drops the whole tree in one step, and
// a parent is never outlived by its children. Consumers that need a value
// to survive past their own scope must explicitly Adopt it into the
// enclosing arena rather than holding a bare reference.
package arena

import "sync"

// Arena is a scoped allocation region. The zero value is not usable;
// construct with New or NewChild.
type Arena struct {
	mu       sync.Mutex
	parent   *Arena
	children []*Arena
	released bool
	// live holds every value handed out by this arena, for diagnostics
	// and for the allocator-hook-style invariant check used in tests
	// (arena release makes prior allocations unreachable).
	live []interface{}
}

// New creates a root arena with no parent.
func New() *Arena {
	return &Arena{}
}

// NewChild creates a child arena. Children are released no later than
// their parent: Release on the parent recursively releases all
// still-live children first.
func (a *Arena) NewChild() *Arena {
	a.mu.Lock()
	defer a.mu.Unlock()
	child := &Arena{parent: a}
	a.children = append(a.children, child)
	return child
}

// Alloc records v as owned by the arena and returns it. Since Go values
// are already heap-managed, Alloc's job is bookkeeping: it lets Release
// assert that nothing allocated here remains reachable through the
// arena afterward.
func (a *Arena) Alloc(v interface{}) interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		panic("arena: alloc after release")
	}
	a.live = append(a.live, v)
	return v
}

// Strdup copies s into a new string value owned by this arena. Go
// strings are immutable and already independent of the caller's buffer,
// so this exists for parity with the C allocator's strdup and to record
// the allocation against the arena for Released/LiveCount bookkeeping.
func (a *Arena) Strdup(s string) string {
	cp := string(append([]byte(nil), s...))
	a.Alloc(cp)
	return cp
}

// Memdup copies b into a new byte slice owned by this arena.
func (a *Arena) Memdup(b []byte) []byte {
	cp := append([]byte(nil), b...)
	a.Alloc(cp)
	return cp
}

// Adopt copies v's ownership from a child scope into a, letting it
// escape the child's Release. Callers use this for the few values
// (expanded strings, computed fields) that must outlive the arena that
// produced them.
func (a *Arena) Adopt(v interface{}) interface{} {
	return a.Alloc(v)
}

// Release walks this arena's children depth-first, releasing each, then
// drops this arena's own live set. Calling Release twice is a no-op.
func (a *Arena) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return
	}
	for _, c := range a.children {
		c.Release()
	}
	a.children = nil
	a.live = nil
	a.released = true
}

// Released reports whether Release has been called on this arena.
func (a *Arena) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}

// LiveCount returns the number of values currently tracked by this
// arena (not including children). It is zero after Release. Intended
// for tests verifying the "allocations unreachable after release"
// invariant.
func (a *Arena) LiveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}
