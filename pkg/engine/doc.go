/*
Package engine wires together the action registry, collection-manager
registry, and KV store into the object a host adapter drives through
the connection/transaction lifecycle.

New builds an Engine from a Config: it opens the configured KV backend
(optionally wrapped in AES-256-GCM encryption), registers the five core
actions, and registers a "kv" collection manager scheme backed by that
store. Callers may register additional actions, collection managers, or
matcher providers before calling Ready, which connects the KV store,
starts the event broker, freezes the action registry, and marks the
engine usable.

ConnectionOpened configures every collection binding named in Config
and returns a Connection, whose TransactionStarted allocates a child
arena, a DPI, and runs each binding's Populate callback to seed fields.
Phase runs the rule harness for one pipeline phase and reports whether
the host should stop. Finished persists bound collections, publishes
the transaction's event sink to the broker, and releases the arena.

MetricsPoller samples engine-wide gauges, such as active transaction
counts per block mode, on a ticker independent of any single
transaction's lifecycle.
*/
package engine
