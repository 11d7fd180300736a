package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/sake/internal/catalog"
	"github.com/roach88/sake/internal/repoerr"
	"github.com/roach88/sake/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool               `json:"valid"`
	Checked int                `json:"checked"`
	Errors  []schema.Violation `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every experiment record against the schema",
		Long: `Check every experiment record against the record schema.

Unlike list, which stops at the first bad record, validate reports every
violation in every file. Exits 1 when any record is invalid.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(rootOpts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := rootOpts.logger()

	dir, err := experimentsDir(rootOpts)
	if err != nil {
		return commandError(formatter, err)
	}

	paths, err := catalog.Entries(dir)
	if err != nil {
		return commandError(formatter, err)
	}

	validator, err := schema.New()
	if err != nil {
		return reportError(formatter, ErrCodeGeneric, err)
	}

	var violations []schema.Violation
	for _, path := range paths {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return commandError(formatter, repoerr.NewIOError(path, err))
		}

		found := validator.Validate(path, data)
		logger.Debug("validated record", zap.String("path", path), zap.Int("violations", len(found)))
		violations = append(violations, found...)
	}

	if len(violations) > 0 {
		return outputValidationErrors(formatter, len(paths), violations)
	}
	return outputValidateSuccess(formatter, len(paths))
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, checked int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Checked: checked})
	}

	fmt.Fprintf(formatter.Writer, "✓ All %d experiment(s) valid\n", checked)
	return nil
}

// outputValidationErrors outputs every violation.
func outputValidationErrors(formatter *OutputFormatter, checked int, errs []schema.Violation) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:   false,
				Checked: checked,
				Errors:  errs,
			},
			Error: &CLIError{
				Code:    ErrCodeSchema,
				Message: errs[0].Error(),
			},
		}

		if err := formatter.encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", ErrCodeSchema, err.Error())
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
