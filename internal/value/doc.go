// Package value provides the closed value model for experiment parameters
// and checkpoint metrics.
//
// Records carry free-form JSON under params and metrics. Instead of decoding
// into interface{} and probing types at runtime, every payload becomes one of
// six sealed types: Null, Bool, String, Number, Array, Object. Consumers
// (filter canonicalization, rendering, digests) type-switch exhaustively.
//
// This package imports nothing internal.
package value
