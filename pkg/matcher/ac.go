package matcher

import (
	"bytes"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sentrywaf/engine/pkg/types"
)

// acPattern is a multi-pattern set: patt is a newline-separated list
// of literals, matched by scanning each in turn; no Aho-Corasick
// automaton is built. The parsed set is cached per pattern text so
// repeated compiles of the same rule don't re-split it.
type acPattern struct {
	literals [][]byte
}

// acProvider matches if the buffer contains any of several literal
// patterns, checking them one after another and caching built pattern
// sets by their source text. Registered
// under "ac".
type acProvider struct {
	cache *lru.Cache[string, *acPattern]
}

func newACProvider() *acProvider {
	cache, err := lru.New[string, *acPattern](256)
	if err != nil {
		panic(err) // only fails for non-positive size
	}
	return &acProvider{cache: cache}
}

func (p *acProvider) Compile(patt string) (Pattern, error) {
	if cached, ok := p.cache.Get(patt); ok {
		return cached, nil
	}
	lines := strings.Split(patt, "\n")
	set := &acPattern{literals: make([][]byte, 0, len(lines))}
	for _, l := range lines {
		if l == "" {
			continue
		}
		set.literals = append(set.literals, []byte(l))
	}
	if len(set.literals) == 0 {
		return nil, types.NewError(types.Invalid, "matcher: ac pattern set is empty")
	}
	p.cache.Add(patt, set)
	return set, nil
}

func (p *acProvider) MatchBuf(pat Pattern, data []byte) (bool, error) {
	set := pat.(*acPattern)
	for _, lit := range set.literals {
		if bytes.Contains(data, lit) {
			return true, nil
		}
	}
	return false, nil
}

func init() {
	Register("ac", newACProvider())
}
