package jsonrequest

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client issues JSON requests. The zero value is not usable; create one with
// NewClient. Client is safe for concurrent use by multiple goroutines.
type Client struct {
	transport   Transport
	parser      Parser
	headers     map[string]string
	readTimeout time.Duration
	logger      logrus.FieldLogger
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// NewClient creates a client. Without options it uses a shared HTTPTransport,
// DefaultParser and the logrus standard logger.
//
// Example:
//
//	client := jsonrequest.NewClient(
//	    jsonrequest.WithReadTimeout(5*time.Second),
//	    jsonrequest.WithHeader("Authorization", "Bearer token"),
//	)
//
//	data, err := client.Get(ctx, jsonrequest.URL("https://api.example.com/users"))
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		transport: defaultTransport,
		parser:    DefaultParser,
		headers:   make(map[string]string),
		logger:    logrus.StandardLogger(),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithTransport replaces the transport.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

// WithHTTPClient uses an HTTPTransport over httpClient.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.transport = NewHTTPTransport(httpClient)
	}
}

// WithParser sets the parser used when Options.Parser is nil.
func WithParser(p Parser) ClientOption {
	return func(c *Client) {
		c.parser = p
	}
}

// WithHeader adds a default header. Headers set in Options win over it.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithReadTimeout sets the timeout used when Options.ReadTimeout is zero.
func WithReadTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.readTimeout = d
	}
}

// WithLogger sets the logger debug events are written to.
func WithLogger(l logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// Request performs the request with opts.Method, GET when empty.
//
// It returns the parsed body, or nil for a successful HEAD. Errors are either
// an *Error (status >= 400, unparsable body, read timeout), the transport's
// own error unwrapped, or the cause of ctx being done.
func (c *Client) Request(ctx context.Context, opts Options) (any, error) {
	return c.do(ctx, opts, "")
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, opts Options) (any, error) {
	return c.do(ctx, opts, http.MethodGet)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, opts Options) (any, error) {
	return c.do(ctx, opts, http.MethodPost)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, opts Options) (any, error) {
	return c.do(ctx, opts, http.MethodPut)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, opts Options) (any, error) {
	return c.do(ctx, opts, http.MethodDelete)
}

// Head performs a HEAD request. On success the value is always nil.
func (c *Client) Head(ctx context.Context, opts Options) (any, error) {
	return c.do(ctx, opts, http.MethodHead)
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, opts Options) (any, error) {
	return c.do(ctx, opts, http.MethodPatch)
}

func (c *Client) do(ctx context.Context, opts Options, method string) (any, error) {
	opts = Normalize(c.withDefaults(opts), method)

	log := c.logger.WithFields(logrus.Fields{
		"id":     uuid.NewString(),
		"method": opts.Method,
		"url":    opts.URL,
	})
	start := time.Now()

	p := newPendingRequest(opts, c.parser)
	if err := context.Cause(ctx); err != nil {
		p.cancel(err)
		return p.result()
	}

	log.Debug("Sending request")
	p.armTimer()
	p.attach(c.transport.Perform(opts, func(out Outcome) {
		if p.settled() {
			log.WithField("status", out.StatusCode).Debug("Discarding late transport completion")
		}
		p.onComplete(out)
	}))

	select {
	case <-p.done:
	case <-ctx.Done():
		p.cancel(context.Cause(ctx))
	}

	value, err := p.result()
	fields := logrus.Fields{"elapsed": time.Since(start)}
	if err != nil {
		fields["error"] = err
		if code := CodeOf(err); code != "" {
			fields["code"] = code
		}
	}
	log.WithFields(fields).Debug("Request settled")
	return value, err
}

// withDefaults layers the client's headers and read timeout under opts.
func (c *Client) withDefaults(opts Options) Options {
	if len(c.headers) > 0 {
		headers := make(map[string]string, len(c.headers)+len(opts.Headers))
		set := make(map[string]bool, len(opts.Headers))
		for key, value := range opts.Headers {
			headers[key] = value
			set[http.CanonicalHeaderKey(key)] = true
		}
		for key, value := range c.headers {
			if !set[http.CanonicalHeaderKey(key)] {
				headers[key] = value
			}
		}
		opts.Headers = headers
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = c.readTimeout
	}
	return opts
}

// DefaultClient is used by the package level request functions.
var DefaultClient = NewClient()

// Request performs the request with DefaultClient.
func Request(ctx context.Context, opts Options) (any, error) {
	return DefaultClient.Request(ctx, opts)
}

// Get performs a GET request with DefaultClient.
func Get(ctx context.Context, opts Options) (any, error) {
	return DefaultClient.Get(ctx, opts)
}

// Post performs a POST request with DefaultClient.
func Post(ctx context.Context, opts Options) (any, error) {
	return DefaultClient.Post(ctx, opts)
}

// Put performs a PUT request with DefaultClient.
func Put(ctx context.Context, opts Options) (any, error) {
	return DefaultClient.Put(ctx, opts)
}

// Delete performs a DELETE request with DefaultClient.
func Delete(ctx context.Context, opts Options) (any, error) {
	return DefaultClient.Delete(ctx, opts)
}

// Head performs a HEAD request with DefaultClient.
func Head(ctx context.Context, opts Options) (any, error) {
	return DefaultClient.Head(ctx, opts)
}

// Patch performs a PATCH request with DefaultClient.
func Patch(ctx context.Context, opts Options) (any, error) {
	return DefaultClient.Patch(ctx, opts)
}
