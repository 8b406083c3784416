package cli

import (
	"errors"

	"github.com/wesleyorama2/jsonreq/jsonrequest"
)

// Exit codes for the jsonreq CLI
const (
	// ExitSuccess indicates the request succeeded
	ExitSuccess = 0

	// ExitHTTPError indicates a response status of 400 or above
	ExitHTTPError = 1

	// ExitParseError indicates a body that could not be parsed or did not
	// match the schema
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitTimeoutError indicates the read timeout expired
	ExitTimeoutError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the process exit code for err. When reported is set the
// error was already written to the output and is not printed again.
type ExitError struct {
	Code     int
	Err      error
	reported bool
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(err error) error {
	return &ExitError{Code: ExitUsageError, Err: err}
}

func configError(err error) error {
	return &ExitError{Code: ExitConfigError, Err: err}
}

// requestError wraps the failure of a request that has already been printed.
func requestError(err error) error {
	return &ExitError{Code: exitCodeFor(err), Err: err, reported: true}
}

func exitCodeFor(err error) int {
	var e *jsonrequest.Error
	if !errors.As(err, &e) {
		return ExitNetworkError
	}
	switch e.Kind() {
	case jsonrequest.KindHTTPStatus:
		return ExitHTTPError
	case jsonrequest.KindJSONParse:
		return ExitParseError
	case jsonrequest.KindReadTimeout:
		return ExitTimeoutError
	default:
		return ExitNetworkError
	}
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsageError
}
