package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sake/internal/filter"
	"github.com/roach88/sake/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	DB      string
	Filters []string
}

// ExportResult is the JSON payload of export. Counts are read back from
// the snapshot after writing.
type ExportResult struct {
	DB          string `json:"db"`
	Experiments int    `json:"experiments"`
	Params      int    `json:"params"`
	Checkpoints int    `json:"checkpoints"`
	Metrics     int    `json:"metrics"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a listing to a SQLite snapshot",
		Long: `Write the (optionally filtered) experiment listing to a SQLite database.

The snapshot replaces whatever the database held before. The repository is
only read. Query the snapshot with "sake query".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to the SQLite database (required)")
	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil, "keep experiments where field=value (repeatable)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExport(rootOpts *RootOptions, opts *ExportOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	dir, err := experimentsDir(rootOpts)
	if err != nil {
		return commandError(formatter, err)
	}

	exps, err := newCatalog(rootOpts).List(cmd.Context(), dir, opts.Filters)
	if err != nil {
		return commandError(formatter, err)
	}

	// List already rejected malformed tokens.
	preds, _ := filter.ParseAll(opts.Filters)

	st, err := store.Open(opts.DB, store.WithLogger(rootOpts.logger()))
	if err != nil {
		return reportError(formatter, ErrCodeIO, err)
	}
	defer st.Close()

	meta := store.Snapshot{Source: dir, Filter: filter.String(filter.And{Predicates: preds})}
	if err := st.WriteSnapshot(cmd.Context(), meta, exps); err != nil {
		return reportError(formatter, ErrCodeGeneric, err)
	}

	counts, err := st.Count(cmd.Context())
	if err != nil {
		return reportError(formatter, ErrCodeIO, err)
	}
	result := ExportResult{
		DB:          opts.DB,
		Experiments: counts.Experiments,
		Params:      counts.Params,
		Checkpoints: counts.Checkpoints,
		Metrics:     counts.Metrics,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "Exported %d experiment(s), %d checkpoint(s) to %s\n",
		result.Experiments, result.Checkpoints, result.DB)
	return nil
}
