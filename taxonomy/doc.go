// Package taxonomy loads and holds the occupational classification
// store: one Entity per unit group, with its duties, example titles,
// requirements and hierarchy labels.
//
// The store is immutable once loaded and safe for concurrent reads. It
// is the single source of truth for entity order and for the global
// duty enumeration that the embedding index is built over: duty
// identity is the (entity index, position) pair, never inferred from
// iteration order alone.
//
// Loading is strict by default: missing mandatory fields, duplicate
// codes and malformed bracket-encoded list fields fail with errors
// wrapping core.ErrData. WithLenientLists restores the legacy
// default-to-empty behavior as an explicit, logged policy choice.
package taxonomy
