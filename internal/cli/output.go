package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/sake/internal/repoerr"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation failure (records violating the schema)
	ExitCommandError = 2 // Command error (unreadable repository, bad filter, etc.)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric           = "E001" // Generic/unknown error
	ErrCodeIO                = "E002" // Storage could not be read
	ErrCodeSchema            = "E003" // Record does not match the schema
	ErrCodeMalformedFilter   = "E004" // Filter token without '='
	ErrCodeInvalidRepository = "E005" // Unsupported repository location
	ErrCodeNotFound          = "E006" // No experiment matches an id prefix
	ErrCodeAmbiguous         = "E007" // Several experiments match an id prefix
)

// ErrorCode maps a repository error kind to its CLI error code.
func ErrorCode(err error) string {
	switch repoerr.KindOf(err) {
	case repoerr.KindIO:
		return ErrCodeIO
	case repoerr.KindSchema:
		return ErrCodeSchema
	case repoerr.KindMalformedFilter:
		return ErrCodeMalformedFilter
	case repoerr.KindInvalidRepository:
		return ErrCodeInvalidRepository
	case repoerr.KindNotFound:
		return ErrCodeNotFound
	case repoerr.KindAmbiguous:
		return ErrCodeAmbiguous
	default:
		return ErrCodeGeneric
	}
}

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitCommandError (2) if the error is not an ExitError: cobra
// reports bad arguments and unknown flags that way.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.errWriter(), "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.errWriter(), "Details: %v\n", details)
	}
	return nil
}

// encode writes one JSON document per line. HTML escaping stays off so
// canonical payloads pass through unchanged.
func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// errorDetails are attached to JSON error responses.
type errorDetails struct {
	Kind  string `json:"kind"`
	Path  string `json:"path,omitempty"`
	Token string `json:"token,omitempty"`
}

// commandError reports err through the formatter and converts it to an
// ExitError with ExitCommandError.
func commandError(f *OutputFormatter, err error) error {
	return reportError(f, ErrorCode(err), err)
}

// reportError is commandError with an explicit error code, for failures
// that are not repository errors.
func reportError(f *OutputFormatter, code string, err error) error {
	var details any
	var rerr *repoerr.Error
	if errors.As(err, &rerr) {
		details = errorDetails{Kind: string(rerr.Kind), Path: rerr.Path, Token: rerr.Token}
	}

	_ = f.Error(code, err.Error(), details)
	return WrapExitError(ExitCommandError, code, err)
}
