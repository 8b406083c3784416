package jsonrequest

import (
	"fmt"
	"net/http"
)

// classify turns the state of a finished request into its settled value.
// The first matching rule wins: timeout, transport error, HTTP status >= 400,
// HEAD short circuit, then the parser.
func classify(timedOut bool, opts Options, out Outcome, parse Parser) (any, error) {
	switch {
	case timedOut:
		return nil, NewReadTimeoutError()
	case out.Err != nil:
		return nil, out.Err
	case out.StatusCode >= http.StatusBadRequest:
		return nil, NewHTTPStatusError(out.StatusCode, out.Body)
	case opts.Method == http.MethodHead:
		return nil, nil
	}

	if opts.Parser != nil {
		parse = opts.Parser
	}
	if parse == nil {
		parse = DefaultParser
	}
	value, err := runParser(parse, out.Body)
	if err != nil {
		return nil, NewJSONParseError(out.Body)
	}
	return value, nil
}

// runParser calls parse and reports a panic inside it as an error.
func runParser(parse Parser, body []byte) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("parser panic: %v", r)
		}
	}()
	return parse(body)
}
