package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/roach88/sake/internal/experiment"
	"github.com/roach88/sake/internal/value"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	Select []string
	All    bool
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one experiment",
		Long: `Show the command, parameters and best checkpoint of one experiment.

<id> may be any prefix of the experiment id that matches exactly one
experiment.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Select, "select", "s", nil, "only show these params and metrics (repeatable)")
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "show every param and metric")

	return cmd
}

// ShowResult is the JSON payload of show.
type ShowResult struct {
	Experiment     canonical `json:"experiment"`
	BestCheckpoint string    `json:"best_checkpoint,omitempty"`
}

func runShow(rootOpts *RootOptions, opts *ShowOptions, prefix string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	dir, err := experimentsDir(rootOpts)
	if err != nil {
		return commandError(formatter, err)
	}

	exp, err := newCatalog(rootOpts).Find(cmd.Context(), dir, prefix)
	if err != nil {
		return commandError(formatter, err)
	}

	if formatter.Format == "json" {
		result := ShowResult{Experiment: canonical{v: exp.AsObject()}}
		if best := exp.BestCheckpoint(); best != nil {
			result.BestCheckpoint = best.ID
		}
		return formatter.Success(result)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("notty"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return reportError(formatter, ErrCodeGeneric, err)
	}

	out, err := renderer.Render(showMarkdown(exp, opts))
	if err != nil {
		return reportError(formatter, ErrCodeGeneric, err)
	}
	fmt.Fprint(formatter.Writer, out)
	return nil
}

// showMarkdown lays out one experiment as markdown.
func showMarkdown(exp *experiment.Experiment, opts *ShowOptions) string {
	limit := maxLines
	selected := opts.Select
	if opts.All {
		limit = 0
		selected = nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Experiment %s\n\n", exp.ShortID())
	fmt.Fprintf(&b, "- **id:** `%s`\n", exp.ID)
	fmt.Fprintf(&b, "- **created:** %s\n", exp.Created)
	if exp.User != "" {
		fmt.Fprintf(&b, "- **user:** %s\n", exp.User)
	}
	if exp.Host != "" {
		fmt.Fprintf(&b, "- **host:** %s\n", exp.Host)
	}

	if exp.Command != "" {
		fmt.Fprintf(&b, "\n## Command\n\n```\npython %s\n```\n", exp.Command)
	}

	b.WriteString("\n## Parameters\n\n")
	writeBlock(&b, formatParams(exp, selected, limit))

	b.WriteString("\n## Checkpoint\n\n")
	writeBlock(&b, formatBest(exp, selected, limit))

	return b.String()
}

// writeBlock writes preformatted lines as a fenced block so markdown does
// not reflow them.
func writeBlock(b *strings.Builder, text string) {
	if text == "" {
		text = "(none)"
	}
	fmt.Fprintf(b, "```\n%s\n```\n", text)
}

// displayOrNone renders v, or "None" for a missing value.
func displayOrNone(v value.Value, found bool) string {
	if !found {
		return "None"
	}
	return value.Display(v)
}
