/*
Package event implements the engine's two log-event mechanisms.

Sink is the required, per-transaction append-only buffer: the "event"
action pushes a LogEvent onto it, and nothing else reads from it until
the transaction finishes. It holds no goroutines or channels; a
transaction is single-threaded for its whole lifetime, so a plain slice
is enough.

Broker is optional and engine-wide: a non-blocking pub/sub fan-out,
adapted from the cluster event bus this engine's host process already
uses elsewhere, so that a finished transaction's Sink can be forwarded
to SIEM-style subscribers without the rule harness knowing about
transport. Subscribers with a full buffer silently miss events rather
than blocking the broadcast loop.
*/
package event
