// Package registry keeps one dispatch cache per call site.
//
// A Registry is created and owned by the caller; there is no process-wide
// state. Sites are addressed by a string key, usually the caller's file and
// line as returned by Here, and each site gets a random ID under which its
// diagnostics are published (see package debughttp).
//
// The Registry itself is safe for concurrent use. The maps it hands out are
// not: each belongs to its call site. Summaries and reports lock each Site,
// so a site whose diagnostics are served concurrently is dispatched through
// Site.Get, while a private site can use the bare map from At or Here.
package registry
