// Package bench repeats a request and summarizes its latency distribution.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/wesleyorama2/jsonreq/jsonrequest"
)

// CodeTransport labels failures that carry no jsonrequest code.
const CodeTransport = "TRANSPORT_ERROR"

// Config controls a run.
type Config struct {
	// Iterations is how many times the request runs.
	Iterations int
	// Concurrency bounds the requests in flight. Values below 1 mean 1.
	Concurrency int
	// Rate caps requests started per second. Zero is unlimited.
	Rate float64
}

// Summary is the outcome of a run.
type Summary struct {
	Total     int            `json:"total" yaml:"total"`
	Succeeded int            `json:"succeeded" yaml:"succeeded"`
	Failed    int            `json:"failed" yaml:"failed"`
	Codes     map[string]int `json:"codes,omitempty" yaml:"codes,omitempty"`

	Mean time.Duration `json:"mean" yaml:"mean"`
	P50  time.Duration `json:"p50" yaml:"p50"`
	P90  time.Duration `json:"p90" yaml:"p90"`
	P99  time.Duration `json:"p99" yaml:"p99"`
	Max  time.Duration `json:"max" yaml:"max"`

	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// RequestFunc performs one request.
type RequestFunc func(ctx context.Context) error

// Run calls fn cfg.Iterations times. Request failures are counted by code in
// the summary; Run itself only fails for an invalid config or when ctx ends
// before every request started.
func Run(ctx context.Context, cfg Config, fn RequestFunc) (Summary, error) {
	if cfg.Iterations < 1 {
		return Summary{}, fmt.Errorf("iterations must be at least 1, got %d", cfg.Iterations)
	}
	if cfg.Rate < 0 {
		return Summary{}, fmt.Errorf("rate must not be negative, got %g", cfg.Rate)
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	recorder := NewRecorder()
	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	start := time.Now()
	var runErr error
	for i := 0; i < cfg.Iterations; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				runErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		g.Go(func() error {
			began := time.Now()
			err := fn(ctx)
			recorder.Record(time.Since(began), codeOf(err))
			return nil
		})
	}
	_ = g.Wait()

	summary := recorder.Summary()
	summary.Elapsed = time.Since(start)
	return summary, runErr
}

func codeOf(err error) string {
	if err == nil {
		return ""
	}
	if code := jsonrequest.CodeOf(err); code != "" {
		return code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "CANCELED"
	}
	return CodeTransport
}
