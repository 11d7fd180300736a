package experiment

import "github.com/roach88/sake/internal/value"

// Resolve locates field in the record.
//
// Params are checked first; presence decides, so a param holding null is
// still a hit. Otherwise checkpoints are scanned in document order and the
// first whose metrics contain field wins. Returns (nil, false) when no scope
// has the key.
func (e *Experiment) Resolve(field string) (value.Value, bool) {
	if v, ok := e.Params[field]; ok {
		return v, true
	}

	for i := range e.Checkpoints {
		if v, ok := e.Checkpoints[i].Metrics[field]; ok {
			return v, true
		}
	}

	return nil, false
}
