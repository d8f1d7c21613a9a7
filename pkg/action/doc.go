/*
Package action implements the action core: a process-wide registry of
named actions plus the five actions the engine ships with.

Each action has an optional creation function, turning a human-facing
parameter string into opaque instance data and instance flags, and a
required execution function, applying that data to a transaction's DPI,
intervention state, and event sink. The registry is meant to be
populated during configuration and then frozen: Freeze rejects any
further Register call with Invalid, matching the "global registries are
frozen at engine-start" rule the rest of the engine follows.
*/
package action
