// Package vtblmap provides a dispatch cache: a mapping from the runtime-type
// identity of a value to a memoized value associated with that type.
//
// A Map has two layers:
//
//   - an authoritative table that never evicts and never moves its entries,
//     so that pointers returned by Get stay valid for the life of the Map;
//   - a direct-mapped cache of 2^k slots indexed by (identity >> shift) & mask.
//
// Identities of types loaded into a process share long common prefixes and
// suffixes dictated by memory layout and alignment, so only a narrow window of
// bits tells them apart. The Map does not know that window in advance. When a
// new identity collides with a live one, and the table has grown since the
// last time this happened, the Map searches a small range of cache sizes and
// shifts for the arrangement whose bucket occupancy has maximal Shannon
// entropy, and rebuilds the cache under it. A collision-free arrangement ends
// the search early.
//
// A Map is meant to be owned by exactly one dispatch site and is not safe for
// concurrent use. See package registry for keeping one Map per call site.
//
// Example:
//
//	m := vtblmap.New[int](vtblmap.WithName("area"))
//	idx := m.Get(vtblmap.IdentityOf(shape))
//	if *idx == 0 {
//	    *idx = computeCase(shape) + 1
//	}
package vtblmap
