// Package repoerr defines the error taxonomy shared by the loader, the
// catalog, the filter parser and configuration.
//
// Every failure surfaced to the CLI is an *Error carrying a Kind, so the
// presentation layer can pick a message and exit code without inspecting
// the wrapped cause. All operations are fail-fast: the first error aborts.
package repoerr

import (
	"errors"
	"fmt"
)

// Kind categorizes repository errors.
type Kind string

const (
	// KindIO indicates storage could not be read (missing directory,
	// permission denied, missing file).
	KindIO Kind = "IO_ERROR"

	// KindSchema indicates a record file does not conform to the
	// experiment/checkpoint schema, including malformed JSON.
	KindSchema Kind = "SCHEMA_ERROR"

	// KindMalformedFilter indicates a filter token lacks the field=value separator.
	KindMalformedFilter Kind = "MALFORMED_FILTER"

	// KindInvalidRepository indicates the configured repository location
	// uses an unsupported scheme.
	KindInvalidRepository Kind = "INVALID_REPOSITORY_LOCATION"

	// KindNotFound indicates no record matched an id prefix.
	KindNotFound Kind = "NOT_FOUND"

	// KindAmbiguous indicates more than one record matched an id prefix.
	KindAmbiguous Kind = "AMBIGUOUS"
)

// Error is a classified repository error.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Path is the file or directory involved, when there is one.
	Path string

	// Token is the offending filter token or id prefix, when there is one.
	Token string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause (optional).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path=%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewIOError creates an IO error for path.
func NewIOError(path string, err error) *Error {
	return &Error{Kind: KindIO, Path: path, Message: "cannot read", Err: err}
}

// NewSchemaError creates a schema error for path. err is the parse diagnostic.
func NewSchemaError(path string, err error) *Error {
	return &Error{Kind: KindSchema, Path: path, Message: "record does not match schema", Err: err}
}

// NewMalformedFilterError creates an error for a filter token without '='.
func NewMalformedFilterError(token string) *Error {
	return &Error{
		Kind:    KindMalformedFilter,
		Token:   token,
		Message: fmt.Sprintf("invalid filter %q: expected field=value", token),
	}
}

// NewInvalidRepositoryError creates an error for an unsupported repository location.
func NewInvalidRepositoryError(location string) *Error {
	return &Error{
		Kind:    KindInvalidRepository,
		Token:   location,
		Message: fmt.Sprintf("invalid repository location: %s, only file:// is supported", location),
	}
}

// NewNotFoundError creates an error for an id prefix with no matching record.
func NewNotFoundError(dir, prefix string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Path:    dir,
		Token:   prefix,
		Message: fmt.Sprintf("no experiment with id %q", prefix),
	}
}

// NewAmbiguousError creates an error for an id prefix matching several records.
func NewAmbiguousError(dir, prefix string, n int) *Error {
	return &Error{
		Kind:    KindAmbiguous,
		Path:    dir,
		Token:   prefix,
		Message: fmt.Sprintf("found %d experiments with id %q", n, prefix),
	}
}

// KindOf returns the Kind of err, or "" when err is not a repository error.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsIO returns true if err is an IO error.
func IsIO(err error) bool { return KindOf(err) == KindIO }

// IsSchema returns true if err is a schema error.
func IsSchema(err error) bool { return KindOf(err) == KindSchema }

// IsMalformedFilter returns true if err is a malformed filter error.
func IsMalformedFilter(err error) bool { return KindOf(err) == KindMalformedFilter }

// IsInvalidRepository returns true if err is an invalid repository location error.
func IsInvalidRepository(err error) bool { return KindOf(err) == KindInvalidRepository }

// IsNotFound returns true if err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsAmbiguous returns true if err is an ambiguous id prefix error.
func IsAmbiguous(err error) bool { return KindOf(err) == KindAmbiguous }
