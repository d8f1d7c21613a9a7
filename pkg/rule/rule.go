// Package rule implements the thin rule-engine harness: it iterates a
// phase's rules in declaration order, matches each against the
// transaction's DPI, and executes the matched rule's action instances.
// It knows nothing about how rules are parsed or configured.
package rule

import (
	"github.com/sentrywaf/engine/pkg/action"
	"github.com/sentrywaf/engine/pkg/matcher"
)

// Rule is one configured rule: a target field to match against (empty
// means the rule always fires), a compiled pattern, and the actions to
// run on a match.
type Rule struct {
	action.Rule

	Phase   string
	Target  string
	Matcher *matcher.Matcher
	Pattern matcher.Pattern
	Actions []*action.Instance
}
