/*
Package dpi implements the data-provider interface: an ordered,
case-insensitive mapping from field name to field.Field, scoped to
exactly one transaction.

Beyond the basic add/get/remove operations, DPI implements template
expansion (ExpandStr) for the %{NAME} and %{NAME:subfield} reference
syntax used throughout rule metadata and setvar values. Expansion never
fails on an absent name; it renders an empty string instead, since a
missing field is a common and expected condition in rule authoring.
*/
package dpi
