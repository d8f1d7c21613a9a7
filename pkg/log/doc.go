/*
Package log provides structured logging for the engine using zerolog.

Init configures the global Logger from a Config (level, JSON vs console
output, destination writer). Components derive scoped child loggers
with WithComponent, WithTransactionID, WithRuleID, WithPhase, and
WithIntervention rather than attaching ad-hoc fields inline, so every
log line from a given subsystem, transaction, phase, or verdict
carries consistent context.

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	logger := log.WithComponent("kvstore")
	logger.Warn().Str("key", key).Msg("persist declined")

	log.WithIntervention(verdict.Action, verdict.Status).
		Debug().Str("tx_id", txID).Msg("transaction finished")
*/
package log
