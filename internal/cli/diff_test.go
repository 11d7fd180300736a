package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sake/internal/experiment"
	"github.com/roach88/sake/internal/repoerr"
	"github.com/roach88/sake/internal/value"
)

func TestDiffJSONGolden(t *testing.T) {
	cmd := NewDiffCommand(fixtureOptions(t, "json"))
	stdout, _, err := execute(cmd, "a1b2", "b9c8")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "diff_json", []byte(stdout))
}

func TestDiffText(t *testing.T) {
	cmd := NewDiffCommand(fixtureOptions(t, "text"))
	stdout, _, err := execute(cmd, "a1b2", "b9c8")
	require.NoError(t, err)

	for _, want := range []string{
		"Params",
		"Metrics",
		"a1b2c3d (step 2)",
		"b9c8d7e (step 3)",
		"momentum",
		"None",
	} {
		assert.Contains(t, stdout, want)
	}
	assert.NotContains(t, stdout, "optimizer")
}

func TestDiffUnknownPrefix(t *testing.T) {
	cmd := NewDiffCommand(fixtureOptions(t, "text"))
	_, stderr, err := execute(cmd, "a1b2", "0000")
	require.Error(t, err)
	assert.True(t, repoerr.IsNotFound(err))
	assert.Contains(t, stderr, "Error [E006]")
}

func TestDiffRequiresTwoArguments(t *testing.T) {
	_, _, err := execute(NewDiffCommand(fixtureOptions(t, "text")), "a1b2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDiffExperiments(t *testing.T) {
	left := &experiment.Experiment{
		ID:     "left",
		Params: value.Object{"same": value.Number("1"), "num": value.Number("1.0")},
		Checkpoints: []experiment.Checkpoint{{
			Step:          4,
			Metrics:       value.Object{"acc": value.Number("0.5")},
			PrimaryMetric: experiment.PrimaryMetric{Name: "acc", Goal: experiment.GoalMaximize},
		}},
	}
	right := &experiment.Experiment{
		ID:     "right",
		Params: value.Object{"same": value.Number("1"), "num": value.Number("1")},
	}

	four := int64(4)
	want := DiffResult{
		Left:  DiffSide{ID: "left", BestStep: &four},
		Right: DiffSide{ID: "right"},
		Params: []DiffRow{
			// Compared by literal, so 1.0 and 1 differ.
			{Name: "num", Left: "1.0", Right: "1"},
		},
		Metrics: []DiffRow{
			{Name: "acc", Left: "0.5", Right: "None"},
		},
	}

	if diff := cmp.Diff(want, diffExperiments(left, right)); diff != "" {
		t.Errorf("diffExperiments() mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffIdenticalExperiments(t *testing.T) {
	exp := &experiment.Experiment{ID: "same", Params: value.Object{"lr": value.Number("0.1")}}

	result := diffExperiments(exp, exp)
	assert.Empty(t, result.Params)
	assert.Empty(t, result.Metrics)
	assert.NotNil(t, result.Params)
	assert.NotNil(t, result.Metrics)
}

func TestSideHeader(t *testing.T) {
	step := int64(7)
	assert.Equal(t, "abc (step 7)", sideHeader("abc", DiffSide{BestStep: &step}))
	assert.Equal(t, "abc (no checkpoints)", sideHeader("abc", DiffSide{}))
}
