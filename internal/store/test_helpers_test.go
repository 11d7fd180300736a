package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sake/internal/experiment"
	"github.com/roach88/sake/internal/value"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestExperiment creates an experiment with one checkpoint per
// metrics object.
func createTestExperiment(id string, params value.Object, metrics ...value.Object) *experiment.Experiment {
	exp := &experiment.Experiment{
		ID:      id,
		Created: "2020-05-14T12:00:00.000000Z",
		Params:  params,
	}
	for i, m := range metrics {
		exp.Checkpoints = append(exp.Checkpoints, experiment.Checkpoint{
			ID:            id + "-cp" + string(rune('0'+i)),
			Created:       "2020-05-14T12:01:00.000000Z",
			Step:          int64(i),
			Path:          "model.pth",
			Metrics:       m,
			PrimaryMetric: experiment.PrimaryMetric{Name: "loss", Goal: experiment.GoalMinimize},
		})
	}
	return exp
}
