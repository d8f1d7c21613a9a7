package action

import "github.com/sentrywaf/engine/pkg/event"

// newObservation builds the log event pushed by the "event" action.
// Tags are held by reference to the rule's tag slice: valid for the
// lifetime of the rule object, not copied per event.
func newObservation(rule *Rule, msg string, data []byte) event.LogEvent {
	return event.LogEvent{
		RuleID:     rule.ID,
		Type:       "Observation",
		ActionTag:  "Unknown",
		FinalTag:   "Unknown",
		Confidence: rule.Confidence,
		Severity:   rule.Severity,
		Message:    msg,
		Data:       data,
		Tags:       rule.Tags,
	}
}
