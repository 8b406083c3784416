package jsonrequest

import (
	"errors"
	"net/http"
	"strings"
)

// Kind tags the variant of an Error.
type Kind int

const (
	// KindHTTPStatus is a response with a status code of 400 or above.
	KindHTTPStatus Kind = iota + 1
	// KindJSONParse is a successful response whose body could not be parsed.
	KindJSONParse
	// KindReadTimeout is a request that did not complete within ReadTimeout.
	KindReadTimeout
)

func (k Kind) String() string {
	switch k {
	case KindHTTPStatus:
		return "http_status"
	case KindJSONParse:
		return "json_parse"
	case KindReadTimeout:
		return "read_timeout"
	default:
		return "unknown"
	}
}

const (
	// CodeJSONParse is the code of every KindJSONParse error.
	CodeJSONParse = "ERR_JSON_PARSE"
	// CodeReadTimeout is the code of every KindReadTimeout error.
	CodeReadTimeout = "ERR_READ_TIMEOUT"

	jsonParseMessage   = "Failed to parse data!"
	readTimeoutMessage = "Request timed out"
	unknownStatusText  = "Unknown Status Code"
)

// ErrReadTimeout matches any read timeout error with errors.Is.
var ErrReadTimeout = NewReadTimeoutError()

// Error is the typed failure returned for HTTP status, parse and read timeout
// outcomes. Transport failures are returned as produced by the Transport and
// are never wrapped in an Error.
//
// Callers should branch on Code, which is stable, rather than on the message.
type Error struct {
	kind       Kind
	statusCode int
	message    string
	code       string
	body       []byte
}

// NewHTTPStatusError builds the error for a response with the given status.
// The message is the standard reason phrase and the code is that phrase in
// upper snake case, e.g. 500 gives "Internal Server Error" and
// "INTERNAL_SERVER_ERROR".
func NewHTTPStatusError(statusCode int, body []byte) *Error {
	message := http.StatusText(statusCode)
	if message == "" {
		message = unknownStatusText
	}
	return &Error{
		kind:       KindHTTPStatus,
		statusCode: statusCode,
		message:    message,
		code:       phraseToCode(message),
		body:       cloneBytes(body),
	}
}

// NewJSONParseError builds the error for a body the parser rejected.
func NewJSONParseError(body []byte) *Error {
	return &Error{
		kind:    KindJSONParse,
		message: jsonParseMessage,
		code:    CodeJSONParse,
		body:    cloneBytes(body),
	}
}

// NewReadTimeoutError builds the error for an expired ReadTimeout.
func NewReadTimeoutError() *Error {
	return &Error{
		kind:    KindReadTimeout,
		message: readTimeoutMessage,
		code:    CodeReadTimeout,
	}
}

func (e *Error) Error() string { return e.message }

// Kind reports the variant.
func (e *Error) Kind() Kind { return e.kind }

// Code is the machine readable identifier.
func (e *Error) Code() string { return e.code }

// Message is the human readable phrase, identical to Error().
func (e *Error) Message() string { return e.message }

// StatusCode is the response status for KindHTTPStatus and zero otherwise.
func (e *Error) StatusCode() int { return e.statusCode }

// Body returns a copy of the raw response body exactly as received. It is nil
// for read timeouts.
func (e *Error) Body() []byte { return cloneBytes(e.body) }

// Is reports whether target is an *Error of the same kind and code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind && e.code == t.code
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there
// is none.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ""
}

func phraseToCode(message string) string {
	return strings.ToUpper(strings.ReplaceAll(message, " ", "_"))
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
