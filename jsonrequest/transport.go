package jsonrequest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTooManyRedirects is returned by HTTPTransport, wrapped in a *url.Error,
// when a response would exceed Options.MaxRedirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// Outcome is what a Transport reports for one request: either Err, or a
// status code and the raw body.
type Outcome struct {
	Err        error
	StatusCode int
	Body       []byte
}

// Handle controls an in-flight request.
type Handle interface {
	// Abort asks the transport to stop. It is advisory: the transport may
	// still deliver a completion afterwards.
	Abort()
}

// Transport performs requests. Perform must return promptly and call done
// exactly once, from any goroutine, when the request finishes. done may be
// called before Perform returns.
type Transport interface {
	Perform(opts Options, done func(Outcome)) Handle
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(opts Options, done func(Outcome)) Handle

// Perform calls f.
func (f TransportFunc) Perform(opts Options, done func(Outcome)) Handle {
	return f(opts, done)
}

// AbortFunc adapts a function to Handle.
type AbortFunc func()

// Abort calls f.
func (f AbortFunc) Abort() { f() }

// HTTPTransport is the net/http backed Transport. Each request runs in its own
// goroutine and is aborted by cancelling its context.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client. A nil client uses a client with the default
// transport and no overall timeout, leaving timeouts to Options.ReadTimeout.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{client: client}
}

// Perform starts the request described by opts.
func (t *HTTPTransport) Perform(opts Options, done func(Outcome)) Handle {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		defer cancel()
		done(t.do(ctx, opts))
	}()

	return AbortFunc(cancel)
}

func (t *HTTPTransport) do(ctx context.Context, opts Options) Outcome {
	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, body)
	if err != nil {
		return Outcome{Err: err}
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if opts.Compress {
		req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	}

	// Copy so the redirect policy stays per request.
	client := *t.client
	limit := opts.redirectLimit()
	client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) > limit {
			return ErrTooManyRedirects
		}
		return nil
	}

	resp, err := client.Do(req)
	if err != nil {
		return Outcome{Err: err}
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return Outcome{Err: fmt.Errorf("read response body: %w", err)}
	}

	return Outcome{StatusCode: resp.StatusCode, Body: data}
}

// defaultTransport is shared by clients that do not configure one.
var defaultTransport = NewHTTPTransport(&http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
})
