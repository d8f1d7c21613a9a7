package rule

import (
	"github.com/sentrywaf/engine/pkg/action"
	"github.com/sentrywaf/engine/pkg/dpi"
)

// ErrorReporter receives transaction-phase errors. Per the error
// handling design, such errors are logged and the action that raised
// them is treated as a no-op; the harness never aborts a rule's
// remaining actions because of one.
type ErrorReporter func(ruleID string, err error)

// Harness holds rules grouped by phase, each group in declaration
// order. The zero value is not usable, use NewHarness.
type Harness struct {
	phases map[string][]*Rule
	report ErrorReporter
}

// NewHarness returns an empty harness. report may be nil, in which
// case transaction-phase errors are silently swallowed.
func NewHarness(report ErrorReporter) *Harness {
	if report == nil {
		report = func(string, error) {}
	}
	return &Harness{phases: make(map[string][]*Rule), report: report}
}

// AddRule appends r to its phase's rule list, preserving declaration
// order.
func (h *Harness) AddRule(r *Rule) {
	h.phases[r.Phase] = append(h.phases[r.Phase], r)
}

// RunPhase executes every rule declared for phase, in order, against
// d, running matched actions against ctx. It returns stopped=true if
// an immediate block fired partway through, in which case the caller
// must not invoke any further phase for this transaction.
func (h *Harness) RunPhase(phase string, d *dpi.DPI, ctx *action.ExecContext) (stopped bool, err error) {
	for _, r := range h.phases[phase] {
		if ctx.Intervention.StopFurtherRules() {
			return true, nil
		}

		matched, merr := h.evaluate(r, d)
		if merr != nil {
			h.report(r.ID, merr)
			continue
		}
		if !matched {
			continue
		}

		for _, inst := range r.Actions {
			if err := inst.Execute(&r.Rule, ctx); err != nil {
				h.report(r.ID, err)
			}
		}
	}
	return ctx.Intervention.StopFurtherRules(), nil
}

func (h *Harness) evaluate(r *Rule, d *dpi.DPI) (bool, error) {
	if r.Matcher == nil || r.Pattern == nil {
		return true, nil
	}
	f, err := d.Get(r.Target)
	if err != nil {
		return false, err
	}
	if f == nil {
		return false, nil
	}
	return r.Matcher.MatchField(r.Pattern, f)
}
