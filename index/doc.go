// Package index builds, persists and loads the embedding index: one
// profile vector per taxonomy entity, one vector per duty, the duty
// ownership table and the entity metadata bundle.
//
// Building is the offline half of the matcher. The Builder constructs a
// weighted searchable text per entity, embeds profiles and duties in
// order-preserving batches over a bounded worker pool, and returns a
// verified Index. Persistence is a single container file written with
// write-to-temp-then-rename semantics, so an interrupted build or save
// leaves any previously persisted index fully intact. The container
// carries a fingerprint of the source corpus, so stale indexes are
// detectable after taxonomy updates.
//
// A loaded Index is read-only and safe for concurrent readers without
// locking.
package index
