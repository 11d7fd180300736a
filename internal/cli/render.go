package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/roach88/sake/internal/experiment"
	"github.com/roach88/sake/internal/value"
)

const (
	// maxLines caps the parameter and metric lines shown per cell.
	maxLines = 5

	// maxLineWidth is the longest line shown before it is cut.
	maxLineWidth = 60

	// createdLayout is how listings show a record's created timestamp.
	createdLayout = "15:04\n01/02/06"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// canonical marshals a value as canonical JSON inside a response.
type canonical struct {
	v value.Value
}

func (c canonical) MarshalJSON() ([]byte, error) {
	return value.MarshalCanonical(c.v)
}

// newTable returns a rounded-border table with the shared styles.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// renderList draws the experiments table.
func renderList(exps []*experiment.Experiment, selected []string) string {
	t := newTable("id", "Created", "Parameters", "Checkpoints")
	for _, exp := range exps {
		t.Row(
			exp.ShortID(),
			formatCreated(exp.Created),
			formatParams(exp, selected, maxLines),
			formatBest(exp, selected, maxLines),
		)
	}
	return t.Render()
}

// formatCreated renders an RFC 3339 timestamp as time over date. Other
// strings are shown unchanged.
func formatCreated(created string) string {
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return created
	}
	return t.Format(createdLayout)
}

// formatParams lists "key: value" lines in key order.
func formatParams(exp *experiment.Experiment, selected []string, limit int) string {
	keys := selectKeys(exp.Params, selected)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s: %s", k, value.Display(exp.Params[k]))
	}
	return present(lines, limit)
}

// formatBest shows the best checkpoint's step and metrics, primary metric
// first.
func formatBest(exp *experiment.Experiment, selected []string, limit int) string {
	best := exp.BestCheckpoint()
	if best == nil {
		return "0 checkpoints"
	}

	lines := []string{fmt.Sprintf("step %d (best)", best.Step)}
	keys := selectKeys(best.Metrics, selected)
	primary := best.PrimaryMetric.Name
	if _, ok := best.Metrics[primary]; ok && contains(keys, primary) {
		lines = append(lines, fmt.Sprintf("%s: %s", primary, value.Display(best.Metrics[primary])))
	}
	for _, k := range keys {
		if k == primary {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", k, value.Display(best.Metrics[k])))
	}
	if limit > 0 {
		// The step line does not count against the cap.
		limit++
	}
	return present(lines, limit)
}

// selectKeys returns obj's keys in order, narrowed to selected when at
// least one selected name is present.
func selectKeys(obj value.Object, selected []string) []string {
	keys := obj.SortedKeys()
	if len(selected) == 0 {
		return keys
	}

	var narrowed []string
	for _, k := range keys {
		if contains(selected, k) {
			narrowed = append(narrowed, k)
		}
	}
	if len(narrowed) == 0 {
		return keys
	}
	return narrowed
}

// present joins lines, keeping at most limit of them (limit <= 0 keeps
// all) and cutting long lines.
func present(lines []string, limit int) string {
	if limit > 0 && len(lines) > limit {
		lines = append(lines[:limit:limit], "...")
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = trimLine(line)
	}
	return strings.Join(out, "\n")
}

func trimLine(line string) string {
	runes := []rune(line)
	if len(runes) <= maxLineWidth {
		return line
	}
	return string(runes[:maxLineWidth-3]) + "..."
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
