// Package jsonpath resolves simple JSONPath expressions ($.users[0].name)
// against JSON documents using gjson.
package jsonpath

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/jsonreq/jsonrequest"
)

// ErrInvalidJSON is returned for documents gjson cannot read.
var ErrInvalidJSON = errors.New("invalid JSON")

// Lookup returns the value at path in body, in the representation
// encoding/json uses for an any: map[string]any, []any, float64, string,
// bool or nil.
func Lookup(body []byte, path string) (any, error) {
	if path == "" {
		return nil, fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}

	result := gjson.GetBytes(body, toGjsonPath(path))
	if !result.Exists() {
		return nil, fmt.Errorf("path not found: %s", path)
	}
	return result.Value(), nil
}

// Parser returns a jsonrequest.Parser that resolves to the value at path
// instead of the whole document. A missing path fails like a malformed body.
func Parser(path string) jsonrequest.Parser {
	return func(body []byte) (any, error) {
		return Lookup(body, path)
	}
}

// toGjsonPath converts a JSONPath expression to gjson syntax:
// $.users[0].name becomes users.0.name and $ becomes @this.
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	// Quoted bracket keys: ['name'] and ["name"].
	path = strings.NewReplacer(`['`, ".", `']`, "", `["`, ".", `"]`, "").Replace(path)

	// Index brackets: [0] becomes .0
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)

	return strings.TrimPrefix(path, ".")
}
