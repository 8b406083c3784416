package jsonrequest

import "encoding/json"

// Parser converts a response body into a value. Any error it returns is
// reported to the caller as a KindJSONParse Error carrying the raw body.
type Parser func(body []byte) (any, error)

// DefaultParser decodes the body with encoding/json into the generic
// representation: map[string]any, []any, string, float64, bool or nil.
func DefaultParser(body []byte) (any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseInto returns a Parser that decodes the body into a T. The value handed
// back by the client is then a T and can be asserted directly.
func ParseInto[T any]() Parser {
	return func(body []byte) (any, error) {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
