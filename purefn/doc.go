// Package purefn memoizes pure functions of a value's dynamic type.
//
// TableizeByType is not just a utility to add memoization.
// It asks the developer a narrower question than Tableize does:
//
//	→ "Does this result depend on the type of the argument, and nothing else?"
//
// Dispatch tables, type names, reflection-derived metadata and the index of
// the first matching case in a type switch all pass that test. For such
// functions the result can be computed once per type and fetched through a
// vtblmap.Map on every later call.
//
// Features:
//   - TableizeByTypeI1O1, TableizeByTypeI1O2: generic memoizers keyed by dynamic type.
//   - FirstMatch: memoizes the index of the first case accepting a value.
//   - No reflection on the hot path, one direct-mapped cache lookup per call.
//
// A nil interface has no dynamic type and is never memoized: the function is
// called every time.
//
// The returned functions are not safe for concurrent use. Give each
// goroutine its own, or use package registry to keep one per call site.
//
// WARNING: Do not use TableizeByType on functions whose result depends on the
// value rather than its type.
package purefn
