// Package selection tracks row selection over a server-paginated collection.
//
// The tracker never holds record objects, only identifiers, and it never needs
// more than the page currently on screen. Two modes are supported:
//   - Direct: a record is selected iff its ID was explicitly checked.
//   - Bulk: the first N records by global position are implicitly selected,
//     with per-record exceptions on both sides of the boundary.
//
// Bulk mode stores the intent as the half-open range [0, N) plus two small
// exception sets, so memory grows with the number of edits rather than with N.
// The selected total is recomputed from set sizes on every call.
//
// A Tracker is not safe for concurrent use; it is meant to be owned by a single
// interaction loop.
package selection
