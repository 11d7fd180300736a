// Package experiment holds the experiment record model, the record loader
// and field resolution.
//
// A record is one JSON document under <repository>/metadata/experiments/.
// Load turns it into an immutable *Experiment; Resolve finds a named field
// by searching params first, then each checkpoint's metrics in order.
//
// Records are read once per invocation and never written back.
package experiment
