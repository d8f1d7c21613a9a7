package engine

import (
	"time"

	"github.com/sentrywaf/engine/pkg/action"
	"github.com/sentrywaf/engine/pkg/arena"
	"github.com/sentrywaf/engine/pkg/dpi"
	"github.com/sentrywaf/engine/pkg/event"
	"github.com/sentrywaf/engine/pkg/field"
	"github.com/sentrywaf/engine/pkg/intervention"
	"github.com/sentrywaf/engine/pkg/log"
	"github.com/sentrywaf/engine/pkg/metrics"
	"github.com/sentrywaf/engine/pkg/rule"
	"github.com/sentrywaf/engine/pkg/types"
)

// Transaction is one request/response cycle on a Connection. It owns
// a child arena, a DPI, an intervention state machine, and a log
// event sink, per spec.md §3.
type Transaction struct {
	ID   string
	conn *Connection

	arena        *arena.Arena
	dpi          *dpi.DPI
	intervention *intervention.State
	events       *event.Sink
	flags        types.TxFlag

	harness   *rule.Harness
	started   time.Time
	finished  bool
	reqBody   []byte
	respBody  []byte
	reqField  *field.Field
	respField *field.Field
}

// TransactionStarted implements the host boundary's transaction_started:
// allocates the transaction's arena as a child of the connection's,
// creates its DPI, and runs every bound collection manager's Populate
// callback to seed fields.
func (c *Connection) TransactionStarted() (*Transaction, error) {
	t := &Transaction{
		ID:           newTxID(),
		conn:         c,
		arena:        c.arena.NewChild(),
		dpi:          dpi.New(),
		intervention: intervention.New(),
		events:       event.NewSink(),
		harness:      c.engine.Harness,
		started:      time.Now(),
	}

	t.reqField = field.Create("REQUEST_BODY", types.FieldTypeByteStr, []byte(nil))
	t.respField = field.Create("RESPONSE_BODY", types.FieldTypeByteStr, []byte(nil))
	if err := t.dpi.Add(t.reqField); err != nil {
		return nil, err
	}
	if err := t.dpi.Add(t.respField); err != nil {
		return nil, err
	}

	for _, b := range c.bindings {
		if err := b.Populate(t.dpi, t.arena); err != nil {
			metrics.CollectionsPopulatedTotal.WithLabelValues(b.Name(), "error").Inc()
			log.WithTransactionID(t.ID).Warn().Err(err).Str("collection", b.Name()).Msg("populate failed")
			continue
		}
		metrics.CollectionsPopulatedTotal.WithLabelValues(b.Name(), "ok").Inc()
	}

	log.WithTransactionID(t.ID).Debug().Msg("transaction started")
	return t, nil
}

// DataIn implements transaction_data_in: appends buf to the
// request-body buffer and republishes it as the REQUEST_BODY field.
// TDIE does not parse the buffer itself; splitting headers/body/params
// out of it is a host/configuration concern via collection managers
// or additional DPI fields the host adds directly.
func (t *Transaction) DataIn(buf []byte) error {
	t.reqBody = append(t.reqBody, buf...)
	return t.reqField.Setv(append([]byte(nil), t.reqBody...))
}

// DataOut implements transaction_data_out, the response-side analogue
// of DataIn.
func (t *Transaction) DataOut(buf []byte) error {
	t.respBody = append(t.respBody, buf...)
	return t.respField.Setv(append([]byte(nil), t.respBody...))
}

// Phase implements transaction_phase: runs every rule declared for
// phaseID through the rule harness. It returns the intervention
// verdict that should be reported to the host immediately if the
// phase or a rule within it triggered a block; blocked is false when
// the host should continue to the next phase without acting.
func (t *Transaction) Phase(phaseID string) (verdict types.Intervention, blocked bool, err error) {
	if t.intervention.StopFurtherRules() {
		return t.intervention.Resolve(), true, nil
	}

	timer := metrics.NewTimer()
	ctx := &action.ExecContext{
		DPI:          t.dpi,
		Intervention: t.intervention,
		Events:       t.events,
		TxFlags:      &t.flags,
	}
	stopped, err := t.harness.RunPhase(phaseID, t.dpi, ctx)
	timer.ObserveDurationVec(metrics.PhaseDuration, phaseID)
	if err != nil {
		return types.Intervention{}, false, err
	}

	if stopped || t.intervention.EndOfPhase() {
		verdict := t.intervention.Resolve()
		log.WithPhase(phaseID).Debug().Str("tx_id", t.ID).Str("action", verdict.Action.String()).Msg("phase blocked")
		return verdict, true, nil
	}
	return types.Intervention{Action: types.InterventionNone, Status: t.intervention.Status()}, false, nil
}

// Finished implements transaction_finished: persists every bound
// collection, publishes the event sink to the connection's engine
// broker, records metrics, and releases the transaction's arena. It
// returns the final intervention verdict.
func (t *Transaction) Finished() (types.Intervention, error) {
	if t.finished {
		return t.intervention.Resolve(), nil
	}
	t.finished = true

	var firstErr error
	for _, b := range t.conn.bindings {
		if err := b.Persist(t.dpi); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	t.conn.engine.Broker.PublishAll(t.events)
	metrics.EventsEmittedTotal.Add(float64(t.events.Len()))
	metrics.DPIFieldsTotal.Observe(float64(len(t.dpi.GetAll())))

	verdict := t.intervention.Resolve()
	metrics.TransactionsTotal.WithLabelValues(verdict.Action.String()).Inc()
	metrics.TransactionDuration.Observe(time.Since(t.started).Seconds())

	t.arena.Release()
	log.WithIntervention(verdict.Action, verdict.Status).Debug().Str("tx_id", t.ID).Msg("transaction finished")
	return verdict, firstErr
}
