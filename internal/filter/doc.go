// Package filter provides the predicates used to narrow an experiment
// listing.
//
// Predicate is a sealed interface using the marker method pattern. Only
// types in this package implement it, so Test and backend compilers can
// type-switch exhaustively:
//
//	switch p := pred.(type) {
//	case Equal:
//	    // field = literal
//	case And:
//	    // all of p.Predicates
//	}
//
// A filter token has the form field=value and is split on the first '='.
// Matching compares the canonical text of the resolved field (see
// value.Text) with the literal; fields that do not resolve, or whose value
// has no canonical text, never match.
package filter
