package matcher

import "bytes"

// literalProvider matches a pattern as a raw substring. Registered
// under "literal".
type literalProvider struct{}

func (literalProvider) Compile(patt string) (Pattern, error) {
	return []byte(patt), nil
}

func (literalProvider) MatchBuf(p Pattern, data []byte) (bool, error) {
	return bytes.Contains(data, p.([]byte)), nil
}

func init() {
	Register("literal", literalProvider{})
}
