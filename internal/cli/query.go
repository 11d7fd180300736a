package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/sake/internal/filter"
	"github.com/roach88/sake/internal/repoerr"
	"github.com/roach88/sake/internal/store"
	"github.com/roach88/sake/internal/value"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	DB      string
	Filters []string
	Records bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter an exported snapshot",
		Long: `Print the ids of experiments in a snapshot written by "sake export"
that match every --filter. Filters behave exactly as in "sake list".

With --records the stored records are printed instead, one canonical JSON
document per line (a JSON array with --format json).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to the SQLite database (required)")
	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil, "keep experiments where field=value (repeatable)")
	cmd.Flags().BoolVarP(&opts.Records, "records", "r", false, "print stored records instead of ids")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(rootOpts *RootOptions, opts *QueryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Open would create a missing database; a query never should.
	if _, err := os.Stat(opts.DB); err != nil {
		return commandError(formatter, repoerr.NewIOError(opts.DB, err))
	}

	preds, err := filter.ParseAll(opts.Filters)
	if err != nil {
		return commandError(formatter, err)
	}

	st, err := store.Open(opts.DB, store.WithLogger(rootOpts.logger()))
	if err != nil {
		return reportError(formatter, ErrCodeIO, err)
	}
	defer st.Close()

	meta, err := st.ReadSnapshot(cmd.Context())
	if err != nil {
		return reportError(formatter, ErrCodeIO, err)
	}

	pred := filter.And{Predicates: preds}
	matches, err := st.Select(cmd.Context(), pred)
	if err != nil {
		return reportError(formatter, ErrCodeGeneric, err)
	}

	rootOpts.logger().Debug("queried snapshot",
		zap.String("db", opts.DB),
		zap.String("source", meta.Source),
		zap.String("exported_filter", meta.Filter),
		zap.String("filter", filter.String(pred)),
		zap.Int("matched", len(matches)))

	if opts.Records {
		return outputRecords(cmd.Context(), formatter, st, matches)
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	if formatter.Format == "json" {
		return formatter.Success(ids)
	}
	for _, id := range ids {
		fmt.Fprintln(formatter.Writer, id)
	}
	return nil
}

// outputRecords prints the stored record of every match.
func outputRecords(ctx context.Context, formatter *OutputFormatter, st *store.Store, matches []store.Match) error {
	records := make(value.Array, len(matches))
	for i, m := range matches {
		row, err := st.ReadExperiment(ctx, m.Seq)
		if err != nil {
			return reportError(formatter, ErrCodeIO, err)
		}
		records[i] = row.Record
	}

	if formatter.Format == "json" {
		return formatter.Success(canonical{v: records})
	}
	for _, rec := range records {
		data, err := value.MarshalCanonical(rec)
		if err != nil {
			return reportError(formatter, ErrCodeGeneric, err)
		}
		fmt.Fprintln(formatter.Writer, string(data))
	}
	return nil
}
