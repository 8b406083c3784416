package jsonrequest

import (
	"net/http"
	"strings"
	"time"
)

const (
	// AcceptHeader is the header every request carries.
	AcceptHeader = "Accept"
	// AcceptJSON is the value of AcceptHeader.
	AcceptJSON = "application/json"
	// DefaultMaxRedirects is used when Options.MaxRedirects is zero.
	DefaultMaxRedirects = 10
)

// Options describes a single request.
//
// Options values are never modified by the client, so a shared base value can
// be reused across concurrent calls.
type Options struct {
	// URL is the absolute request URL. It is not validated before the
	// transport sees it.
	URL string

	// Method is the HTTP method. Empty means GET. The shorthand client
	// methods (Get, Post, ...) override it.
	Method string

	// Headers are sent with the request. Any accept header is replaced
	// with "Accept: application/json".
	Headers map[string]string

	// Body is the request payload, if any.
	Body []byte

	// ReadTimeout bounds the whole request. Zero disables it.
	ReadTimeout time.Duration

	// MaxRedirects caps how many redirects the transport follows.
	// Zero means DefaultMaxRedirects, a negative value refuses any redirect.
	MaxRedirects int

	// Compress asks the server for gzip, deflate or br encoded bodies and
	// decodes them before parsing.
	Compress bool

	// Parser converts a successful body into a value. Nil falls back to the
	// client's parser, then DefaultParser.
	Parser Parser
}

// URL is the string shorthand for Options{URL: u}.
func URL(u string) Options {
	return Options{URL: u}
}

// Normalize returns a copy of opts ready for the transport. A non-empty method
// replaces opts.Method; otherwise an empty method defaults to GET. The headers
// map is copied and its accept entry, under any casing, is replaced with
// application/json.
func Normalize(opts Options, method string) Options {
	out := opts

	if method != "" {
		out.Method = method
	}
	if out.Method == "" {
		out.Method = http.MethodGet
	}
	out.Method = strings.ToUpper(out.Method)

	headers := make(map[string]string, len(opts.Headers)+1)
	for key, value := range opts.Headers {
		if http.CanonicalHeaderKey(key) == AcceptHeader {
			continue
		}
		headers[key] = value
	}
	headers[AcceptHeader] = AcceptJSON
	out.Headers = headers

	if opts.Body != nil {
		out.Body = append([]byte(nil), opts.Body...)
	}

	return out
}

// redirectLimit resolves MaxRedirects to the number of redirects allowed.
func (o Options) redirectLimit() int {
	switch {
	case o.MaxRedirects == 0:
		return DefaultMaxRedirects
	case o.MaxRedirects < 0:
		return 0
	default:
		return o.MaxRedirects
	}
}
