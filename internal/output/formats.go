package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/jsonreq/internal/bench"
	"github.com/wesleyorama2/jsonreq/jsonrequest"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat maps a flag value to an OutputFormat. Empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Result is one finished call as handed to a formatter.
type Result struct {
	Options jsonrequest.Options
	Value   any
	Err     error
	Elapsed time.Duration
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(opts jsonrequest.Options) string
	FormatResult(res Result) string
	FormatSummary(s bench.Summary) string
}

// RequestData represents the structured data of an HTTP request
type RequestData struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`
}

// ErrorData is the structured form of a failed call.
type ErrorData struct {
	Kind       string `json:"kind" yaml:"kind"`
	Code       string `json:"code,omitempty" yaml:"code,omitempty"`
	Message    string `json:"message" yaml:"message"`
	StatusCode int    `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Body       string `json:"body,omitempty" yaml:"body,omitempty"`
}

// ResultData represents the structured data of a finished call
type ResultData struct {
	Method    string     `json:"method" yaml:"method"`
	URL       string     `json:"url" yaml:"url"`
	ElapsedMs int64      `json:"elapsedMs" yaml:"elapsedMs"`
	OK        bool       `json:"ok" yaml:"ok"`
	Value     any        `json:"value" yaml:"value"`
	Error     *ErrorData `json:"error,omitempty" yaml:"error,omitempty"`
	Timestamp string     `json:"timestamp" yaml:"timestamp"`
}

// SummaryData is a bench.Summary with durations in milliseconds.
type SummaryData struct {
	Total     int            `json:"total" yaml:"total"`
	Succeeded int            `json:"succeeded" yaml:"succeeded"`
	Failed    int            `json:"failed" yaml:"failed"`
	Codes     map[string]int `json:"codes,omitempty" yaml:"codes,omitempty"`
	MeanMs    float64        `json:"meanMs" yaml:"meanMs"`
	P50Ms     float64        `json:"p50Ms" yaml:"p50Ms"`
	P90Ms     float64        `json:"p90Ms" yaml:"p90Ms"`
	P99Ms     float64        `json:"p99Ms" yaml:"p99Ms"`
	MaxMs     float64        `json:"maxMs" yaml:"maxMs"`
	ElapsedMs float64        `json:"elapsedMs" yaml:"elapsedMs"`
}

func newRequestData(opts jsonrequest.Options) RequestData {
	return RequestData{
		Method:  opts.Method,
		URL:     opts.URL,
		Headers: opts.Headers,
		Body:    string(opts.Body),
	}
}

func newResultData(res Result) ResultData {
	data := ResultData{
		Method:    res.Options.Method,
		URL:       res.Options.URL,
		ElapsedMs: res.Elapsed.Milliseconds(),
		OK:        res.Err == nil,
		Value:     res.Value,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if res.Err != nil {
		data.Error = NewErrorData(res.Err)
	}
	return data
}

// NewErrorData describes err. Errors that are not *jsonrequest.Error are
// reported with kind "transport".
func NewErrorData(err error) *ErrorData {
	var e *jsonrequest.Error
	if !errors.As(err, &e) {
		return &ErrorData{Kind: "transport", Message: err.Error()}
	}
	return &ErrorData{
		Kind:       e.Kind().String(),
		Code:       e.Code(),
		Message:    e.Message(),
		StatusCode: e.StatusCode(),
		Body:       string(e.Body()),
	}
}

func newSummaryData(s bench.Summary) SummaryData {
	return SummaryData{
		Total:     s.Total,
		Succeeded: s.Succeeded,
		Failed:    s.Failed,
		Codes:     s.Codes,
		MeanMs:    millis(s.Mean),
		P50Ms:     millis(s.P50),
		P90Ms:     millis(s.P90),
		P99Ms:     millis(s.P99),
		MaxMs:     millis(s.Max),
		ElapsedMs: millis(s.Elapsed),
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

func (f *JSONFormatter) marshal(v any, what string) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal %s: %s"}`, what, err)
	}
	return string(output) + "\n"
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(opts jsonrequest.Options) string {
	return f.marshal(newRequestData(opts), "request")
}

// FormatResult formats a result as JSON
func (f *JSONFormatter) FormatResult(res Result) string {
	return f.marshal(newResultData(res), "result")
}

// FormatSummary formats a bench summary as JSON
func (f *JSONFormatter) FormatSummary(s bench.Summary) string {
	return f.marshal(newSummaryData(s), "summary")
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct{}

func (f *YAMLFormatter) marshal(v any, what string) string {
	output, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal %s: %s\n", what, err)
	}
	return string(output)
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(opts jsonrequest.Options) string {
	return f.marshal(newRequestData(opts), "request")
}

// FormatResult formats a result as YAML
func (f *YAMLFormatter) FormatResult(res Result) string {
	return f.marshal(newResultData(res), "result")
}

// FormatSummary formats a bench summary as YAML
func (f *YAMLFormatter) FormatSummary(s bench.Summary) string {
	return f.marshal(newSummaryData(s), "summary")
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return NewFormatter(verbose, noColor)
	}
}
