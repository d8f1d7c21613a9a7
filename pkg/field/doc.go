/*
Package field implements the engine's typed value cell.

A Field carries an immutable name and type tag plus a storage
discipline that determines where its value actually lives:

  - static: the field owns its value outright.
  - alias: the field's slot is a pointer into caller-owned storage;
    reads and writes go through that pointer.
  - dynamic: the value comes from a getter callback, invoked on every
    read until MakeStatic pins the last result. The discipline then
    transitions dynamic -> static permanently; there is no reverse
    transition.

This collapse mirrors the "observe once, stop recomputing" shape used
elsewhere in the engine for things like dynamic health probes, applied
here to eliminate repeated computation of an expensive field (e.g. a
geo-IP lookup) after its first use.
*/
package field
