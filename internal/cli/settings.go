package cli

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/jsonreq/internal/config"
	"github.com/wesleyorama2/jsonreq/internal/output"
	"github.com/wesleyorama2/jsonreq/jsonrequest"
	"github.com/wesleyorama2/jsonreq/pkg/jsonpath"
	"github.com/wesleyorama2/jsonreq/pkg/jsonschema"
)

// settings is the config file layered under the command line flags.
type settings struct {
	headers      map[string]string
	body         []byte
	readTimeout  time.Duration
	maxRedirects int
	compress     bool
	parser       jsonrequest.Parser
	format       output.OutputFormat
	noColor      bool
	verbose      bool

	repeat      int
	concurrency int
	rate        float64
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()

	cfg := &config.Config{}
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, configError(err)
		}
		cfg = loaded
	}

	s := &settings{
		maxRedirects: cfg.MaxRedirects,
		compress:     cfg.Compress,
		noColor:      cfg.NoColor,
	}
	s.verbose, _ = flags.GetBool("verbose")

	rawHeaders, _ := flags.GetStringArray("header")
	flagHeaders, err := parseHeaders(rawHeaders)
	if err != nil {
		return nil, usageError(err)
	}
	s.headers = mergeHeaders(cfg.ResolvedHeaders(), flagHeaders)

	if data, _ := flags.GetString("data"); data != "" {
		s.body, err = readData(data)
		if err != nil {
			return nil, usageError(err)
		}
		if !hasHeader(s.headers, "Content-Type") {
			s.headers["Content-Type"] = "application/json"
		}
	}

	s.readTimeout, err = cfg.ReadTimeoutDuration()
	if err != nil {
		return nil, configError(err)
	}
	if flags.Changed("read-timeout") {
		raw, _ := flags.GetString("read-timeout")
		probe := config.Config{ReadTimeout: raw}
		s.readTimeout, err = probe.ReadTimeoutDuration()
		if err != nil {
			return nil, usageError(fmt.Errorf("invalid --read-timeout %q: %w", raw, err))
		}
		if s.readTimeout < 0 {
			return nil, usageError(fmt.Errorf("--read-timeout must not be negative"))
		}
	}

	if flags.Changed("max-redirects") {
		s.maxRedirects, _ = flags.GetInt("max-redirects")
	}
	if compress, _ := flags.GetBool("compress"); compress {
		s.compress = true
	}
	if noColor, _ := flags.GetBool("no-color"); noColor {
		s.noColor = true
	}

	rawFormat := cfg.Output
	if flags.Changed("output") {
		rawFormat, _ = flags.GetString("output")
	}
	s.format, err = output.ParseFormat(rawFormat)
	if err != nil {
		return nil, usageError(err)
	}

	query, _ := flags.GetString("query")
	schemaPath, _ := flags.GetString("schema")
	s.parser, err = buildParser(query, schemaPath)
	if err != nil {
		return nil, err
	}

	s.repeat, _ = flags.GetInt("repeat")
	s.concurrency, _ = flags.GetInt("concurrency")
	s.rate, _ = flags.GetFloat64("rate")
	if s.repeat < 1 {
		return nil, usageError(fmt.Errorf("--repeat must be at least 1, got %d", s.repeat))
	}
	if s.rate < 0 {
		return nil, usageError(fmt.Errorf("--rate must not be negative, got %g", s.rate))
	}

	return s, nil
}

// buildParser picks the body parser. The schema, when given, is checked
// against the whole document before the query selects part of it.
func buildParser(query, schemaPath string) (jsonrequest.Parser, error) {
	var schema *jsonschema.Schema
	if schemaPath != "" {
		var err error
		schema, err = jsonschema.CompileFile(schemaPath)
		if err != nil {
			return nil, configError(err)
		}
	}

	switch {
	case schema != nil && query != "":
		validate := schema.Parser()
		return func(body []byte) (any, error) {
			if _, err := validate(body); err != nil {
				return nil, err
			}
			return jsonpath.Lookup(body, query)
		}, nil
	case schema != nil:
		return schema.Parser(), nil
	case query != "":
		return jsonpath.Parser(query), nil
	default:
		return nil, nil
	}
}

// parseHeaders splits "Key: Value" flags. A later flag for the same header
// replaces an earlier one.
func parseHeaders(raw []string) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for _, header := range raw {
		key, value, ok := strings.Cut(header, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Key: Value'", header)
		}
		setHeader(headers, key, strings.TrimSpace(value))
	}
	return headers, nil
}

// mergeHeaders layers override over base, matching keys case insensitively.
func mergeHeaders(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		setHeader(merged, key, value)
	}
	for key, value := range override {
		setHeader(merged, key, value)
	}
	return merged
}

func setHeader(headers map[string]string, key, value string) {
	for existing := range headers {
		if http.CanonicalHeaderKey(existing) == http.CanonicalHeaderKey(key) {
			delete(headers, existing)
		}
	}
	headers[key] = value
}

func hasHeader(headers map[string]string, key string) bool {
	for existing := range headers {
		if http.CanonicalHeaderKey(existing) == http.CanonicalHeaderKey(key) {
			return true
		}
	}
	return false
}

func readData(data string) ([]byte, error) {
	path, ok := strings.CutPrefix(data, "@")
	if !ok {
		return []byte(data), nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading request body: %w", err)
	}
	return body, nil
}

// normalizeURL adds http:// to URLs given without a scheme.
func normalizeURL(rawURL string) string {
	if strings.Contains(rawURL, "://") {
		return rawURL
	}
	return "http://" + rawURL
}
