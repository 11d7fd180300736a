// Package catalog enumerates an experiments directory, loads every record
// and narrows the result with filter predicates.
//
// Loading is fail-fast: the first failure in enumeration order aborts the
// listing, even when records are loaded in parallel. Output keeps the raw
// directory enumeration order, which the platform does not guarantee to be
// sorted or stable.
package catalog
