// Package filter narrows SCSB API responses with expr-lang expressions.
//
// Each record of a response is decoded and its fields are exposed to the
// expression as variables, so a search row can be matched with
//
//	owningInstitution == "NYPL" and icontains(title, "dick")
//
// Records that are not JSON objects are reachable as value. Besides the expr
// builtins the following helpers are available: icontains, iprefix, isuffix,
// iequals and present(field), which is true when the record carries the
// field with a non-null value.
//
// Apply filters either a top-level array (availability reports) or an array
// held under a key of an object (searchResultRows in search responses).
package filter
