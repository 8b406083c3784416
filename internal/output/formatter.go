package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/wesleyorama2/jsonreq/internal/bench"
	"github.com/wesleyorama2/jsonreq/jsonrequest"
)

// Formatter is responsible for formatting requests and results in text format
type Formatter struct {
	Verbose bool
	NoColor bool

	colors *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		colors:  colors,
	}
}

// FormatRequest formats a normalized request for display. Headers and body
// are only shown in verbose mode.
func (f *Formatter) FormatRequest(opts jsonrequest.Options) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n",
		f.colors.Method.Sprint(opts.Method),
		f.colors.URL.Sprint(opts.URL)))

	if !f.Verbose {
		return buf.String()
	}

	if len(opts.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		for _, key := range slices.Sorted(maps.Keys(opts.Headers)) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n",
				f.colors.HeaderKey.Sprint(key),
				f.colors.HeaderValue.Sprint(opts.Headers[key])))
		}
	}

	if len(opts.Body) > 0 {
		buf.WriteString("  Body: ")
		buf.WriteString(formatJSONString(string(opts.Body)))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResult formats the parsed value or the error of a finished call
func (f *Formatter) FormatResult(res Result) string {
	var buf strings.Builder
	elapsed := res.Elapsed.Milliseconds()

	if res.Err != nil {
		data := NewErrorData(res.Err)
		label := data.Code
		if label == "" {
			label = data.Kind
		}
		buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s %s %s",
			ErrorIcon(f.NoColor),
			f.colors.Code.Sprint(label),
			f.colors.Error.Sprint(data.Message)))
		if data.StatusCode != 0 {
			buf.WriteString(fmt.Sprintf(" (%d)", data.StatusCode))
		}
		buf.WriteString(fmt.Sprintf(" (%dms)\n", elapsed))
		if data.Body != "" {
			buf.WriteString("  Body:\n  ")
			buf.WriteString(formatJSONString(data.Body))
			buf.WriteString("\n")
		}
		return buf.String()
	}

	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s %s (%dms)\n",
		SuccessIcon(f.NoColor),
		f.colors.Success.Sprint("OK"),
		elapsed))

	if res.Value == nil && res.Options.Method == "HEAD" {
		buf.WriteString("  (no body)\n")
		return buf.String()
	}

	value, err := json.MarshalIndent(res.Value, "  ", "  ")
	if err != nil {
		buf.WriteString(fmt.Sprintf("  %v\n", res.Value))
		return buf.String()
	}
	buf.WriteString("  ")
	buf.Write(value)
	buf.WriteString("\n")

	return buf.String()
}

// FormatSummary formats the latency summary of a repeated request
func (f *Formatter) FormatSummary(s bench.Summary) string {
	var buf strings.Builder

	buf.WriteString(InfoIcon(f.NoColor) + " ")
	buf.WriteString(f.colors.Highlight.Sprint("Summary"))
	buf.WriteString(fmt.Sprintf(" %d requests in %s\n", s.Total, roundDuration(s.Elapsed)))

	buf.WriteString(fmt.Sprintf("  %s %d succeeded\n", SuccessIcon(f.NoColor), s.Succeeded))
	if s.Failed > 0 {
		// Partial failure is a warning, total failure an error.
		icon := WarningIcon(f.NoColor)
		if s.Succeeded == 0 {
			icon = ErrorIcon(f.NoColor)
		}
		buf.WriteString(fmt.Sprintf("  %s %d failed\n", icon, s.Failed))
		for _, code := range slices.Sorted(maps.Keys(s.Codes)) {
			buf.WriteString(fmt.Sprintf("      %s: %d\n", f.colors.Code.Sprint(code), s.Codes[code]))
		}
	}

	buf.WriteString("  Latency:\n")
	buf.WriteString(fmt.Sprintf("    mean: %s\n", roundDuration(s.Mean)))
	buf.WriteString(fmt.Sprintf("    p50:  %s\n", roundDuration(s.P50)))
	buf.WriteString(fmt.Sprintf("    p90:  %s\n", roundDuration(s.P90)))
	buf.WriteString(fmt.Sprintf("    p99:  %s\n", roundDuration(s.P99)))
	buf.WriteString(fmt.Sprintf("    max:  %s\n", roundDuration(s.Max)))

	return buf.String()
}

func roundDuration(d time.Duration) time.Duration {
	if d > time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(time.Microsecond)
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
