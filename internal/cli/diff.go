package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/sake/internal/experiment"
	"github.com/roach88/sake/internal/value"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <id> <id>",
		Short: "Compare two experiments",
		Long: `Compare the parameters and best-checkpoint metrics of two experiments.

Only rows whose values differ are shown. A value missing on one side is
shown as None.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

// DiffRow is one differing field.
type DiffRow struct {
	Name  string `json:"name"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// DiffSide identifies one compared experiment.
type DiffSide struct {
	ID       string `json:"id"`
	BestStep *int64 `json:"best_step,omitempty"`
}

// DiffResult is the JSON payload of diff.
type DiffResult struct {
	Left    DiffSide  `json:"left"`
	Right   DiffSide  `json:"right"`
	Params  []DiffRow `json:"params"`
	Metrics []DiffRow `json:"metrics"`
}

func runDiff(rootOpts *RootOptions, leftPrefix, rightPrefix string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	dir, err := experimentsDir(rootOpts)
	if err != nil {
		return commandError(formatter, err)
	}

	cat := newCatalog(rootOpts)
	left, err := cat.Find(cmd.Context(), dir, leftPrefix)
	if err != nil {
		return commandError(formatter, err)
	}
	right, err := cat.Find(cmd.Context(), dir, rightPrefix)
	if err != nil {
		return commandError(formatter, err)
	}

	result := diffExperiments(left, right)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	params := newTable("Parameter", left.ShortID(), right.ShortID())
	for _, row := range result.Params {
		params.Row(row.Name, row.Left, row.Right)
	}
	metrics := newTable("Metric", sideHeader(left.ShortID(), result.Left), sideHeader(right.ShortID(), result.Right))
	for _, row := range result.Metrics {
		metrics.Row(row.Name, row.Left, row.Right)
	}

	fmt.Fprintln(formatter.Writer, "Params")
	fmt.Fprintln(formatter.Writer, params.Render())
	fmt.Fprintln(formatter.Writer, "Metrics")
	fmt.Fprintln(formatter.Writer, metrics.Render())
	return nil
}

func sideHeader(short string, side DiffSide) string {
	if side.BestStep == nil {
		return short + " (no checkpoints)"
	}
	return fmt.Sprintf("%s (step %d)", short, *side.BestStep)
}

// diffExperiments compares params key by key, then the metrics named by
// either best checkpoint, resolved on each side.
func diffExperiments(left, right *experiment.Experiment) DiffResult {
	result := DiffResult{
		Left:    diffSide(left),
		Right:   diffSide(right),
		Params:  []DiffRow{},
		Metrics: []DiffRow{},
	}

	for _, name := range unionKeys(left.Params, right.Params) {
		lv, lok := left.Params[name]
		rv, rok := right.Params[name]
		if lok == rok && (!lok || value.Equal(lv, rv)) {
			continue
		}
		result.Params = append(result.Params, DiffRow{
			Name:  name,
			Left:  displayOrNone(lv, lok),
			Right: displayOrNone(rv, rok),
		})
	}

	for _, name := range unionKeys(bestMetrics(left), bestMetrics(right)) {
		lv, lok := left.Resolve(name)
		rv, rok := right.Resolve(name)
		if lok == rok && (!lok || value.Equal(lv, rv)) {
			continue
		}
		result.Metrics = append(result.Metrics, DiffRow{
			Name:  name,
			Left:  displayOrNone(lv, lok),
			Right: displayOrNone(rv, rok),
		})
	}

	return result
}

func diffSide(exp *experiment.Experiment) DiffSide {
	side := DiffSide{ID: exp.ID}
	if best := exp.BestCheckpoint(); best != nil {
		step := best.Step
		side.BestStep = &step
	}
	return side
}

func bestMetrics(exp *experiment.Experiment) value.Object {
	if best := exp.BestCheckpoint(); best != nil {
		return best.Metrics
	}
	return nil
}

// unionKeys returns the keys of a and b, sorted.
func unionKeys(a, b value.Object) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var keys []string
	for _, obj := range []value.Object{a, b} {
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
