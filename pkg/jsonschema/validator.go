// Package jsonschema validates decoded JSON values against a JSON Schema.
package jsonschema

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wesleyorama2/jsonreq/jsonrequest"
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Schema is a compiled JSON Schema.
type Schema struct {
	schema *jsonschema.Schema
}

// Compile compiles a schema document.
func Compile(schema []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: compiled}, nil
}

// CompileFile reads and compiles the schema at path.
func CompileFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Compile(data)
}

// Validate checks a value decoded by encoding/json into an any. It returns
// nil when the value conforms, and one error per failed keyword otherwise.
func (s *Schema) Validate(value any) ValidationErrors {
	err := s.schema.Validate(value)
	if err == nil {
		return nil
	}
	if validationErr, ok := err.(*jsonschema.ValidationError); ok {
		return extractValidationErrors(validationErr)
	}
	return ValidationErrors{err}
}

// Parser returns a jsonrequest.Parser that decodes the body and then checks it
// against s. A body that does not conform is reported like a malformed one,
// as a KindJSONParse error with the raw body attached.
func (s *Schema) Parser() jsonrequest.Parser {
	return func(body []byte) (any, error) {
		value, err := jsonrequest.DefaultParser(body)
		if err != nil {
			return nil, err
		}
		if errs := s.Validate(value); len(errs) > 0 {
			return nil, errs
		}
		return value, nil
	}
}

// extractValidationErrors flattens a jsonschema.ValidationError tree, keeping
// only leaves that carry a message.
func extractValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	var errors ValidationErrors

	if len(err.Causes) == 0 && err.Message != "" {
		errors = append(errors, fmt.Errorf("validation error at %s: %s", err.InstanceLocation, err.Message))
	}
	for _, childErr := range err.Causes {
		errors = append(errors, extractValidationErrors(childErr)...)
	}

	return errors
}
