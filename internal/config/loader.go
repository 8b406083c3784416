package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds request defaults for the CLI. Every field can be overridden by
// a command line flag.
type Config struct {
	// Headers are sent with every request. Values may reference variables
	// as {{NAME}}.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Variables are substituted into header values. Environment variables
	// are used for names not listed here.
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`

	ReadTimeout  string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	MaxRedirects int    `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	Compress     bool   `json:"compress,omitempty" yaml:"compress,omitempty"`
	Output       string `json:"output,omitempty" yaml:"output,omitempty"`
	NoColor      bool   `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// LoadConfig loads a configuration file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
//
// Anything else is read as YAML. The result is validated before it is
// returned.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}

	if errs := ValidateConfig(config); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config file %s: %w", path, errs)
	}

	return config, nil
}

// ParseConfig parses configuration data in the format implied by path.
func ParseConfig(data []byte, path string) (*Config, error) {
	var config Config

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	return &config, nil
}

// ReadTimeoutDuration parses ReadTimeout. An empty value is zero.
func (c *Config) ReadTimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.ReadTimeout) == "" {
		return 0, nil
	}
	return parseDurationString(c.ReadTimeout)
}

// ResolvedHeaders returns Headers with {{NAME}} references replaced, looking
// names up in Variables first and then in the process environment.
func (c *Config) ResolvedHeaders() map[string]string {
	env := MergeEnvironments(environ(), c.Variables)
	return ProcessEnvironmentInMap(c.Headers, env)
}

// parseDurationString accepts Go durations ("1.5s", "250ms"), plain integers
// as seconds ("30") and spelled out units ("30 seconds").
func parseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	var seconds int
	if _, err := fmt.Sscanf(duration, "%d", &seconds); err == nil && fmt.Sprint(seconds) == duration {
		return time.Duration(seconds) * time.Second, nil
	}

	duration = strings.ReplaceAll(strings.ToLower(duration), " ", "")
	// Longest words first so "seconds" is not left as "s" + "s".
	duration = strings.NewReplacer(
		"milliseconds", "ms", "millisecond", "ms",
		"seconds", "s", "second", "s",
		"minutes", "m", "minute", "m",
		"hours", "h", "hour", "h",
	).Replace(duration)

	return time.ParseDuration(duration)
}

// ProcessEnvironment replaces {{NAME}} references in input.
func ProcessEnvironment(input string, env map[string]string) string {
	result := input
	for key, value := range env {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// ProcessEnvironmentInMap applies ProcessEnvironment to every value.
func ProcessEnvironmentInMap(input map[string]string, env map[string]string) map[string]string {
	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = ProcessEnvironment(value, env)
	}
	return result
}

// MergeEnvironments merges two environments, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}
	return env
}
