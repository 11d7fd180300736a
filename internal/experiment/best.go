package experiment

import "github.com/roach88/sake/internal/value"

// BestCheckpoint picks the checkpoint that optimizes the experiment's
// dominant primary metric.
//
// The dominant metric is the (name, goal) pair carried by the most
// checkpoints; on a tie the pair first seen last wins. Checkpoints whose
// value for that metric is missing or not a number are skipped. When no
// checkpoint has a numeric value the first checkpoint is returned.
// Returns nil when the experiment has no checkpoints.
func (e *Experiment) BestCheckpoint() *Checkpoint {
	if len(e.Checkpoints) == 0 {
		return nil
	}

	pm := e.dominantMetric()

	best := -1
	var bestVal float64
	for i := range e.Checkpoints {
		f, ok := numericMetric(e.Checkpoints[i].Metrics, pm.Name)
		if !ok {
			continue
		}
		if best < 0 ||
			(pm.Goal == GoalMaximize && f > bestVal) ||
			(pm.Goal == GoalMinimize && f < bestVal) {
			best, bestVal = i, f
		}
	}

	if best < 0 {
		best = 0
	}
	return &e.Checkpoints[best]
}

// dominantMetric returns the most frequent primary metric.
func (e *Experiment) dominantMetric() PrimaryMetric {
	counts := make(map[PrimaryMetric]int)
	var order []PrimaryMetric
	for _, cp := range e.Checkpoints {
		if _, seen := counts[cp.PrimaryMetric]; !seen {
			order = append(order, cp.PrimaryMetric)
		}
		counts[cp.PrimaryMetric]++
	}

	var dominant PrimaryMetric
	most := 0
	for _, pm := range order {
		if counts[pm] >= most {
			dominant, most = pm, counts[pm]
		}
	}
	return dominant
}

func numericMetric(metrics value.Object, name string) (float64, bool) {
	n, ok := metrics[name].(value.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}
