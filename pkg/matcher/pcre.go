package matcher

import (
	"github.com/dlclark/regexp2"

	"github.com/sentrywaf/engine/pkg/types"
)

// pcreProvider compiles patterns with dlclark/regexp2, which supports
// the PCRE backreference and lookaround constructs rules commonly
// rely on and the standard library's regexp does not. Registered
// under "pcre".
type pcreProvider struct{}

func (pcreProvider) Compile(patt string) (Pattern, error) {
	re, err := regexp2.Compile(patt, regexp2.None)
	if err != nil {
		return nil, types.NewError(types.Invalid, "matcher: pcre compile %q: %v", patt, err)
	}
	return re, nil
}

func (pcreProvider) MatchBuf(p Pattern, data []byte) (bool, error) {
	re := p.(*regexp2.Regexp)
	ok, err := re.MatchString(string(data))
	if err != nil {
		return false, types.NewError(types.Other, "matcher: pcre match: %v", err)
	}
	return ok, nil
}

func init() {
	Register("pcre", pcreProvider{})
}
