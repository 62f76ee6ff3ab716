// Package batch splits ordered items into fixed-size batches and tracks
// per-item progress across them.
//
// Key properties:
//   - Batches are consecutive, non-overlapping and order-preserving; only the
//     last batch may be shorter than the batch size
//   - Partitioning is pure and deterministic, so the same input always yields
//     the same batch boundaries
//   - Processing is sequential; a hook runs between batches (never after the
//     last one), which is where rate limiting happens
//   - Progress reports processed count, percentage, elapsed time and an ETA
//     derived from the average time per processed item
package batch
