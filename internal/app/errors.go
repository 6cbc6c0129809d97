package app

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitInvalid = 1
	ExitFailure = 2
)

// ErrNoData reports a run that succeeded but produced nothing: a
// modification that touched no rows, or a read that returned no rows.
var ErrNoData = errors.New("no data")

// ErrValidation represents a request rejected before any database work.
type ErrValidation struct {
	Reason string
	Cause  error
}

func (e *ErrValidation) Error() string {
	if e.Cause != nil && e.Reason == "" {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

func (e *ErrValidation) Unwrap() error {
	return e.Cause
}

// ErrConnection represents a database connection error.
type ErrConnection struct {
	Driver string
	Cause  error
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("could not connect to database '%s': %v", e.Driver, e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrQuery represents a statement that failed to prepare, execute or
// return its rows.
type ErrQuery struct {
	Query  string
	Driver string
	Cause  error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("database query '%s' failed (%s): %v", e.Query, e.Driver, e.Cause)
}

func (e *ErrQuery) Unwrap() error {
	return e.Cause
}

// ErrEncoding represents a result value the output encoding rejected.
type ErrEncoding struct {
	Query string
	Cause error
}

func (e *ErrEncoding) Error() string {
	return fmt.Sprintf("database query '%s' could not be encoded: %v", e.Query, e.Cause)
}

func (e *ErrEncoding) Unwrap() error {
	return e.Cause
}

// ErrIO represents a failure reading an argument or writing output.
type ErrIO struct {
	Op    string
	Cause error
}

func (e *ErrIO) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *ErrIO) Unwrap() error {
	return e.Cause
}

// ExitCode maps the outcome of a run to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var invalid *ErrValidation
	if errors.As(err, &invalid) {
		return ExitInvalid
	}
	return ExitFailure
}
