package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/sake/internal/experiment"
	"github.com/roach88/sake/internal/value"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	Filters []string
	Sort    string
	Select  []string
	Only    []string
	Quiet   bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List experiments",
		Long: `List the experiments in the repository.

Each --filter field=value keeps only experiments whose field has exactly
that text. The field is looked up in params first, then in each
checkpoint's metrics in order. Only strings, null and true can match.
Several filters must all match.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil, "keep experiments where field=value (repeatable)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "reserved; experiments keep directory order")
	cmd.Flags().StringArrayVarP(&opts.Select, "select", "s", nil, "only show these params and metrics (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Only, "only", nil, "same as --select (repeatable)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "print only experiment ids")

	return cmd
}

func runList(rootOpts *RootOptions, opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := rootOpts.logger()

	dir, err := experimentsDir(rootOpts)
	if err != nil {
		return commandError(formatter, err)
	}

	exps, err := newCatalog(rootOpts).List(cmd.Context(), dir, opts.Filters)
	if err != nil {
		return commandError(formatter, err)
	}

	if opts.Sort != "" {
		logger.Warn("--sort is not supported yet; keeping directory order", zap.String("sort", opts.Sort))
	}

	logger.Debug("listing experiments", zap.Int("count", len(exps)))

	switch {
	case opts.Quiet && formatter.Format == "json":
		ids := make([]string, len(exps))
		for i, exp := range exps {
			ids[i] = exp.ID
		}
		return formatter.Success(ids)
	case opts.Quiet:
		for _, exp := range exps {
			fmt.Fprintln(formatter.Writer, exp.ID)
		}
		return nil
	case formatter.Format == "json":
		return formatter.Success(canonical{v: recordsArray(exps)})
	default:
		fmt.Fprintln(formatter.Writer, renderList(exps, opts.selected()))
		return nil
	}
}

// recordsArray converts experiments to a value.Array of records.
func recordsArray(exps []*experiment.Experiment) value.Array {
	arr := make(value.Array, len(exps))
	for i, exp := range exps {
		arr[i] = exp.AsObject()
	}
	return arr
}

// selected merges --select and --only.
func (o *ListOptions) selected() []string {
	if len(o.Only) == 0 {
		return o.Select
	}
	return append(append([]string(nil), o.Select...), o.Only...)
}
